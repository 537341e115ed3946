// Package extract walks a cobra command tree and produces the normalized
// command schema.
package extract

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wagiedev/cli-mcp-go/internal/schema"
)

// Annotation keys read from cobra commands and pflag flags.
const (
	// AnnotationSkip on a command excludes it (and its subtree); on a flag
	// it excludes the flag.
	AnnotationSkip = "climcp.skip"
	// AnnotationRequires on a flag makes it required for remote callers.
	// On a command it holds a comma-separated list of arg ids.
	AnnotationRequires = "climcp.requires"
	// AnnotationSkipArgs on a command holds a comma-separated list of arg ids.
	AnnotationSkipArgs = "climcp.skip_args"
	// AnnotationSkipRoot on the root command drops the root tool when the
	// root has subcommands.
	AnnotationSkipRoot = "climcp.skip_root"
	// AnnotationLongHelp on a flag is its long help text.
	AnnotationLongHelp = "climcp.long_help"
	// AnnotationArgHelpPrefix + positional name on a command is the
	// positional's help text.
	AnnotationArgHelpPrefix = "climcp.arg."
)

// Actions recorded on extracted args.
const (
	ActionSet     = "set"
	ActionSetTrue = "set_true"
	ActionCount   = "count"
	ActionAppend  = "append"
)

// FromCobra extracts the schema of cmd and its visible subcommands.
// The serve flag is never extracted.
func FromCobra(cmd *cobra.Command) *schema.Schema {
	return &schema.Schema{Root: commandSchema(cmd)}
}

func commandSchema(cmd *cobra.Command) *schema.Command {
	out := &schema.Command{
		Name:      cmd.Name(),
		About:     optional(cmd.Short),
		LongAbout: optional(cmd.Long),
		Version:   optional(cmd.Version),
	}

	out.Args = append(out.Args, Positionals(cmd)...)

	persistent := cmd.PersistentFlags()

	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if f.Name == schema.ServeFlag || f.Hidden || f.Deprecated != "" {
			return
		}

		out.Args = append(out.Args, flagSchema(f, persistent.Lookup(f.Name) == f))
	})

	for _, sub := range cmd.Commands() {
		if !visible(sub) {
			continue
		}

		out.Subcommands = append(out.Subcommands, commandSchema(sub))
	}

	return out
}

// visible reports whether sub is exposed. Hidden and deprecated commands
// and cobra's generated help and completion commands are not.
func visible(sub *cobra.Command) bool {
	if sub.Hidden || sub.Deprecated != "" {
		return false
	}

	switch sub.Name() {
	case "help", "completion":
		return false
	default:
		return true
	}
}

func flagSchema(f *pflag.Flag, global bool) *schema.Arg {
	varname, usage := pflag.UnquoteUsage(f)

	arg := &schema.Arg{
		ID:       f.Name,
		Long:     schema.Ptr(f.Name),
		Help:     optional(usage),
		Required: annotationTrue(f.Annotations, cobra.BashCompOneRequiredFlag),
		Global:   global,
	}

	if f.Shorthand != "" {
		arg.Short = schema.Ptr(f.Shorthand)
	}

	if values := f.Annotations[AnnotationLongHelp]; len(values) > 0 {
		arg.LongHelp = schema.Ptr(strings.Join(values, "\n"))
	}

	if varname != "" {
		arg.ValueNames = []string{varname}
	}

	switch {
	case f.NoOptDefVal != "":
		arg.NumArgs = schema.Ptr("0")
		arg.Action = schema.Ptr(ActionSetTrue)

		if f.Value.Type() == "count" {
			arg.Action = schema.Ptr(ActionCount)
		}
	case isSlice(f):
		arg.NumArgs = schema.Ptr("1..")
		arg.Action = schema.Ptr(ActionAppend)
	default:
		arg.NumArgs = schema.Ptr("1")
		arg.Action = schema.Ptr(ActionSet)
	}

	return arg
}

func isSlice(f *pflag.Flag) bool {
	if _, ok := f.Value.(pflag.SliceValue); ok {
		return true
	}

	typ := f.Value.Type()

	return strings.HasSuffix(typ, "Slice") || strings.HasSuffix(typ, "Array")
}

func annotationTrue(annotations map[string][]string, key string) bool {
	values, ok := annotations[key]
	if !ok {
		return false
	}

	return len(values) == 0 || values[0] == "true"
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
