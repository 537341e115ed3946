package climcp

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/wagiedev/cli-mcp-go/internal/extract"
	"github.com/wagiedev/cli-mcp-go/internal/schema"
)

// Skip excludes cmd and its subcommands from the tool list. The command
// keeps working from the command line.
func Skip(cmd *cobra.Command) {
	setAnnotation(cmd, extract.AnnotationSkip, "true")
}

// SkipFlags excludes the named flags or positionals of cmd from its tool.
func SkipFlags(cmd *cobra.Command, ids ...string) {
	appendAnnotation(cmd, extract.AnnotationSkipArgs, ids)
}

// RequireFlags marks the named flags or positionals of cmd as required
// for remote callers, even when the CLI treats them as optional.
func RequireFlags(cmd *cobra.Command, ids ...string) {
	appendAnnotation(cmd, extract.AnnotationRequires, ids)
}

// SkipRootWhenSubcommands drops the root tool when root has subcommands.
func SkipRootWhenSubcommands(root *cobra.Command) {
	setAnnotation(root, extract.AnnotationSkipRoot, "true")
}

// SetLongHelp sets the description of a flag in the tool's input schema.
// It takes precedence over the flag's usage line.
func SetLongHelp(cmd *cobra.Command, flag, help string) error {
	return cmd.Flags().SetAnnotation(flag, extract.AnnotationLongHelp, []string{help})
}

// SetArgHelp sets the description of a positional declared in cmd.Use.
func SetArgHelp(cmd *cobra.Command, name, help string) {
	setAnnotation(cmd, extract.AnnotationArgHelpPrefix+name, help)
}

// WithMCPFlag adds the persistent --mcp flag to root. It does nothing when
// the flag already exists.
func WithMCPFlag(root *cobra.Command) *cobra.Command {
	if root.PersistentFlags().Lookup(schema.ServeFlag) != nil || root.Flags().Lookup(schema.ServeFlag) != nil {
		return root
	}

	root.PersistentFlags().Bool(schema.ServeFlag, false, "Serve this CLI as an MCP server over stdio")

	return root
}

func setAnnotation(cmd *cobra.Command, key, value string) {
	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}

	cmd.Annotations[key] = value
}

func appendAnnotation(cmd *cobra.Command, key string, ids []string) {
	if len(ids) == 0 {
		return
	}

	list := strings.Join(ids, ",")
	if existing := cmd.Annotations[key]; existing != "" {
		list = existing + "," + list
	}

	setAnnotation(cmd, key, list)
}
