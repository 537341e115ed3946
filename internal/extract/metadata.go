package extract

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wagiedev/cli-mcp-go/internal/schema"
)

// MetadataFromCobra collects the overlay declared through annotations on
// cmd, its subcommands and their flags.
func MetadataFromCobra(cmd *cobra.Command) *schema.Metadata {
	md := &schema.Metadata{
		SkipArgs:                       make(map[string][]string),
		RequiresArgs:                   make(map[string][]string),
		SkipRootCommandWhenSubcommands: cmd.Annotations[AnnotationSkipRoot] == "true",
	}

	var walk func(*cobra.Command)

	walk = func(c *cobra.Command) {
		name := c.Name()

		if c != cmd && c.Annotations[AnnotationSkip] == "true" {
			md.SkipCommands = append(md.SkipCommands, name)
		}

		md.SkipArgs[name] = append(md.SkipArgs[name], splitList(c.Annotations[AnnotationSkipArgs])...)
		md.RequiresArgs[name] = append(md.RequiresArgs[name], splitList(c.Annotations[AnnotationRequires])...)

		c.LocalFlags().VisitAll(func(f *pflag.Flag) {
			if annotationTrue(f.Annotations, AnnotationSkip) {
				md.SkipArgs[name] = append(md.SkipArgs[name], f.Name)
			}

			if annotationTrue(f.Annotations, AnnotationRequires) {
				md.RequiresArgs[name] = append(md.RequiresArgs[name], f.Name)
			}
		})

		for _, sub := range c.Commands() {
			if visible(sub) {
				walk(sub)
			}
		}
	}

	walk(cmd)

	for name, ids := range md.SkipArgs {
		if len(ids) == 0 {
			delete(md.SkipArgs, name)
		}
	}

	for name, ids := range md.RequiresArgs {
		if len(ids) == 0 {
			delete(md.RequiresArgs, name)
		}
	}

	return md
}

func splitList(s string) []string {
	var out []string

	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
