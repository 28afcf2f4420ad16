// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/flexchat/internal/config"
	"github.com/jeranaias/flexchat/internal/util"
)

func newProvidersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered providers and their credential status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}

			fmt.Fprintln(a.stdout, TitleStyle.Render("Providers"))
			for _, reg := range a.router.Providers() {
				status, detail := "ready", ""
				if pc := a.cfg.Provider(reg.Name); pc != nil {
					switch {
					case pc.APIKey != "":
						detail = util.MaskSecret(pc.APIKey)
					case pc.APIKeyEnv != "":
						status, detail = "missing", "set "+pc.APIKeyEnv
					default:
						status = "missing"
					}
				}

				fmt.Fprintf(a.stdout, "%2d. %s %-9s %s %s\n",
					reg.ID,
					RenderLabel(reg.Name),
					reg.Kind,
					RenderStatus(status),
					DimStyle.Render(util.TruncateWidth(reg.Model+"  "+detail, GetTerminalWidth()-40)))
			}

			q := a.cfg.Questions
			fmt.Fprintln(a.stdout)
			fmt.Fprintf(a.stdout, "%s %s\n", RenderLabel("ask"), q.Provider)
			fmt.Fprintf(a.stdout, "%s %s\n", RenderLabel("business"), a.cfg.Agents.BusinessProvider)
			fmt.Fprintf(a.stdout, "%s %s\n", RenderLabel("poem"), a.cfg.Agents.PoemProvider)
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with keys redacted",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			fmt.Fprint(a.stdout, a.cfg.String())
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				var err error
				if path, err = config.DefaultPath(); err != nil {
					return err
				}
			}
			if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
				return &UsageError{Reason: "config init writes TOML; choose a .toml path"}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return &UsageError{Reason: fmt.Sprintf("%s already exists (use --force to overwrite)", path)}
			}
			if err := config.SaveTOML(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s %s\n", SuccessStyle.Render("Wrote"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}
