package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"docket/internal/todo"
)

type snapshot struct {
	Folders []todo.Folder `json:"folders" yaml:"folders" toml:"folders"`
	Tasks   []todo.Task   `json:"tasks" yaml:"tasks" toml:"tasks"`
}

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every folder and task as JSON, YAML or TOML",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringP("format", "f", "json", "json, yaml or toml")
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	cmd.RunE = a.run(a.runExport)
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	data, err := encodeSnapshot(snapshot{Folders: a.engine.Folders(), Tasks: a.engine.Tasks()}, format)
	if err != nil {
		return err
	}
	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d task(s) to %s\n", len(a.engine.Tasks()), output)
	return nil
}

func encodeSnapshot(s snapshot, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(s); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}
