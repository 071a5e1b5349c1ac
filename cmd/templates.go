package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/JuezFenix/bgg-profiler/internal/report"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
	"github.com/urfave/cli/v3"
)

// templatesDir resolves --dir, then settings.templates_dir, then the default.
func (r *Runner) templatesDir(cmd *cli.Command) string {
	if dir := cmd.String("dir"); dir != "" {
		return dir
	}
	if config, err := r.loadConfig(cmd); err == nil && config.Settings.TemplatesDir != "" {
		return config.Settings.TemplatesDir
	} else if err != nil {
		r.logger.Debug("using default templates directory", "error", err)
	}
	return shared.DefaultConfig().Settings.TemplatesDir
}

// TemplatesInit writes the built-in template sets to the templates directory.
func (r *Runner) TemplatesInit(ctx context.Context, cmd *cli.Command) error {
	dir := r.templatesDir(cmd)

	written, err := report.WriteBuiltinTemplates(dir, cmd.Bool("force"))
	if err != nil {
		return fmt.Errorf("failed to write templates: %w", err)
	}

	r.logger.Info("templates written", "dir", dir, "files", len(written))
	if len(written) == 0 {
		r.writePlain("All built-in templates already exist in %s (use --force to overwrite)\n", dir)
		return nil
	}
	for _, path := range written {
		r.writePlain("✓ %s\n", path)
	}
	return nil
}

// TemplatesCheck reports which fragments of a template set are missing. Missing fragments are not an error.
func (r *Runner) TemplatesCheck(ctx context.Context, cmd *cli.Command) error {
	dir := r.templatesDir(cmd)

	name := cmd.StringArg("name")
	if name == "" {
		if config, err := r.loadConfig(cmd); err == nil {
			name = config.Settings.Templates
		} else {
			name = shared.DefaultConfig().Settings.Templates
		}
	}

	missing := report.CheckTemplateSet(dir, name)
	if len(missing) == 0 {
		r.writePlain("✓ Template set %q is complete in %s\n", name, dir)
		return nil
	}

	r.logger.Warn("incomplete template set", "name", name, "missing", strings.Join(missing, ","))
	r.writePlain("Template set %q is missing %d of %d fragments:\n", name, len(missing), len(shared.TemplateResources))
	for _, resource := range missing {
		r.writePlain("  ✗ %s\n", shared.TemplateFile(dir, name, resource))
	}
	r.writePlain("Missing fragments render as empty text. Built-in sets: %s\n", strings.Join(report.BuiltinTemplates(), ", "))
	return nil
}

// templatesCommand manages the report template sets
func templatesCommand(r *Runner) *cli.Command {
	dirFlag := &cli.StringFlag{
		Name:  "dir",
		Usage: "Templates directory (defaults to settings.templates_dir)",
	}

	return &cli.Command{
		Name:  "templates",
		Usage: "Manage report template sets",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write the built-in template sets to disk",
				Flags: []cli.Flag{
					dirFlag,
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite existing template files",
					},
				},
				Action: r.TemplatesInit,
			},
			{
				Name:  "check",
				Usage: "Check that every fragment of a template set exists",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  []cli.Flag{dirFlag},
				Action: r.TemplatesCheck,
			},
		},
	}
}
