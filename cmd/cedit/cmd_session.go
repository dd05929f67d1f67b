package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/cedit/analysis"
	"github.com/dhamidi/cedit/persist"
	"github.com/dhamidi/cedit/session"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or reset the saved editor session",
	}

	cmd.AddCommand(newSessionShowCmd())
	cmd.AddCommand(newSessionResetCmd())
	cmd.AddCommand(newSessionTemplatesCmd())

	return cmd
}

// sessionSummary is the YAML view printed by "session show".
type sessionSummary struct {
	Status        string           `yaml:"status"`
	Repairs       []string         `yaml:"repairs,omitempty"`
	ActiveProject int              `yaml:"activeProject"`
	Projects      []projectSummary `yaml:"projects"`
}

type projectSummary struct {
	Name      string            `yaml:"name"`
	Active    string            `yaml:"active"`
	Recent    []string          `yaml:"recent,omitempty"`
	Documents []documentSummary `yaml:"documents"`
}

type documentSummary struct {
	Name        string   `yaml:"name"`
	Bytes       int      `yaml:"bytes"`
	Diagnostics []string `yaml:"diagnostics,omitempty"`
}

func summarize(loaded persist.LoadResult, sess *session.Session) sessionSummary {
	out := sessionSummary{
		Status:        loaded.Status.String(),
		Repairs:       loaded.Repairs,
		ActiveProject: sess.ActiveProject,
	}
	for _, p := range sess.Projects {
		ps := projectSummary{Name: p.Name, Active: p.Active().Name, Recent: p.Recent}
		for _, d := range p.Documents {
			ps.Documents = append(ps.Documents, documentSummary{
				Name:        d.Name,
				Bytes:       len(d.Content),
				Diagnostics: analysis.Messages(d.Diagnostics),
			})
		}
		out.Projects = append(out.Projects, ps)
	}
	return out
}

func newSessionShowCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			opened, err := openStore()
			if err != nil {
				return err
			}
			defer opened.Close()

			if raw {
				data, err := opened.adapter.Raw()
				if errors.Is(err, persist.ErrNotFound) {
					return fmt.Errorf("no session stored under %q", cfg.Storage.Key)
				}
				if err != nil {
					return err
				}
				if cfg.Storage.Codec == "msgpack" {
					var v any
					if err := (persist.MsgpackCodec{}).Unmarshal(data, &v); err != nil {
						return err
					}
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(v)
				}
				_, err = os.Stdout.Write(append(data, '\n'))
				return err
			}

			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(summarize(opened.loaded, opened.store.Session()))
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the stored record as JSON")

	return cmd
}

func newSessionResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to discard the session without --yes")
			}
			opened, err := openStore()
			if err != nil {
				return err
			}
			defer opened.Close()
			if err := opened.store.Reset(); err != nil {
				return err
			}
			fmt.Println("session reset")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")

	return cmd
}

func newSessionTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the built-in project templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range session.Templates() {
				fmt.Printf("%s\n  %s\n", t.Name, t.Description)
				for _, f := range t.Files {
					fmt.Printf("    %s\n", f.Name)
				}
			}
			return nil
		},
	}
}
