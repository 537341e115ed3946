package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/viper"

	"github.com/wagiedev/cli-mcp-go/internal/schema"
)

// EnvPrefix is the prefix of environment variables read by Load,
// e.g. CLIMCP_EXECUTION_PARALLEL_SAFE.
const EnvPrefix = "CLIMCP"

// File is the on-disk configuration of the standalone server binary.
type File struct {
	// Schema is the path of the schema JSON document to serve.
	Schema string `mapstructure:"schema"`

	// Executable is spawned for every tool call.
	Executable string `mapstructure:"executable"`

	Execution Execution    `mapstructure:"execution"`
	Metadata  fileMetadata `mapstructure:"metadata"`
}

type fileMetadata struct {
	SkipCommands                   []string            `mapstructure:"skip_commands"`
	SkipArgs                       map[string][]string `mapstructure:"skip_args"`
	RequiresArgs                   map[string][]string `mapstructure:"requires_args"`
	SkipRootCommandWhenSubcommands bool                `mapstructure:"skip_root_command_when_subcommands"`
	OutputSchema                   map[string]any      `mapstructure:"output_schema"`
}

// Load reads a YAML, TOML or JSON configuration file. An empty path loads
// defaults and environment overrides only.
func Load(path string) (*File, error) {
	v := viper.New()

	v.SetDefault("execution.reinvocation_safe", false)
	v.SetDefault("execution.parallel_safe", false)
	v.SetDefault("execution.share_runtime", false)
	v.SetDefault("execution.catch_in_process_panics", false)
	v.SetDefault("execution.allow_mcp_without_subcommand", true)
	v.SetDefault("schema", "")
	v.SetDefault("executable", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &f, nil
}

// SchemaMetadata converts the metadata section into an overlay.
func (f *File) SchemaMetadata() (*schema.Metadata, error) {
	md := &schema.Metadata{
		SkipCommands:                   f.Metadata.SkipCommands,
		SkipArgs:                       f.Metadata.SkipArgs,
		RequiresArgs:                   f.Metadata.RequiresArgs,
		SkipRootCommandWhenSubcommands: f.Metadata.SkipRootCommandWhenSubcommands,
	}

	if len(f.Metadata.OutputSchema) == 0 {
		return md, nil
	}

	data, err := json.Marshal(f.Metadata.OutputSchema)
	if err != nil {
		return nil, fmt.Errorf("encode output schema: %w", err)
	}

	var out jsonschema.Schema
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode output schema: %w", err)
	}

	md.OutputSchema = &out

	return md, nil
}
