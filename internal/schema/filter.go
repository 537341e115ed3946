package schema

import (
	"slices"
	"strings"
)

// Apply returns a copy of s with the metadata overlay applied:
//   - skipped commands are removed with their whole subtree,
//   - skipped and built-in args are removed,
//   - forced-required args have Required set,
//   - args are sorted by id so the output is identical across calls.
//
// The input schema is not modified. Apply is idempotent.
func Apply(s *Schema, md *Metadata) *Schema {
	if s == nil || s.Root == nil {
		return &Schema{}
	}

	if md == nil {
		md = &Metadata{}
	}

	skip := make(map[string]struct{}, len(md.SkipCommands))
	for _, name := range md.SkipCommands {
		skip[name] = struct{}{}
	}

	return &Schema{Root: applyCommand(s.Root, md, skip)}
}

func applyCommand(cmd *Command, md *Metadata, skip map[string]struct{}) *Command {
	skipArgs := md.SkipArgs[cmd.Name]
	requires := md.RequiresArgs[cmd.Name]

	args := make([]*Arg, 0, len(cmd.Args))

	for _, arg := range cmd.Args {
		if IsBuiltinArg(arg.ID) || slices.Contains(skipArgs, arg.ID) {
			continue
		}

		cp := *arg
		cp.ValueNames = slices.Clone(arg.ValueNames)

		if slices.Contains(requires, arg.ID) {
			cp.Required = true
		}

		args = append(args, &cp)
	}

	slices.SortStableFunc(args, func(a, b *Arg) int {
		return strings.Compare(a.ID, b.ID)
	})

	subs := make([]*Command, 0, len(cmd.Subcommands))

	for _, sub := range cmd.Subcommands {
		if _, skipped := skip[sub.Name]; skipped {
			continue
		}

		subs = append(subs, applyCommand(sub, md, skip))
	}

	return &Command{
		Name:        cmd.Name,
		About:       cmd.About,
		LongAbout:   cmd.LongAbout,
		Version:     cmd.Version,
		Args:        args,
		Subcommands: subs,
	}
}

// Merge combines two overlays. List fields are concatenated, OutputSchema
// from other wins when set, and the root-skip flag is OR-ed.
func (m *Metadata) Merge(other *Metadata) *Metadata {
	out := &Metadata{
		SkipArgs:     make(map[string][]string),
		RequiresArgs: make(map[string][]string),
	}

	for _, src := range []*Metadata{m, other} {
		if src == nil {
			continue
		}

		out.SkipCommands = append(out.SkipCommands, src.SkipCommands...)

		for name, ids := range src.SkipArgs {
			out.SkipArgs[name] = append(out.SkipArgs[name], ids...)
		}

		for name, ids := range src.RequiresArgs {
			out.RequiresArgs[name] = append(out.RequiresArgs[name], ids...)
		}

		if src.OutputSchema != nil {
			out.OutputSchema = src.OutputSchema
		}

		out.SkipRootCommandWhenSubcommands = out.SkipRootCommandWhenSubcommands || src.SkipRootCommandWhenSubcommands
	}

	return out
}
