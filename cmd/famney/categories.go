package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/famney/famney/internal/categories"
	"github.com/famney/famney/internal/cli"
	"github.com/famney/famney/internal/model"
	"github.com/famney/famney/internal/service"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage budget categories",
		Long:    `List, add, update, deactivate and delete the income and expense categories of a family.`,
	}

	cmd.AddCommand(a.listCategoriesCmd())
	cmd.AddCommand(a.showCategoryCmd())
	cmd.AddCommand(a.addCategoryCmd())
	cmd.AddCommand(a.updateCategoryCmd())
	cmd.AddCommand(a.activateCategoryCmd())
	cmd.AddCommand(a.deactivateCategoryCmd())
	cmd.AddCommand(a.deleteCategoryCmd())
	cmd.AddCommand(a.seedCategoriesCmd())
	cmd.AddCommand(a.importCategoriesCmd())
	cmd.AddCommand(a.exportCategoriesCmd())

	return cmd
}

func (a *app) listCategoriesCmd() *cobra.Command {
	var (
		categoryType string
		all          bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Long:  `Display the family's active categories, grouped by type.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			familyID, err := a.familyID()
			if err != nil {
				return err
			}

			filter := service.CategoryFilter{FamilyID: familyID, IncludeInactive: all}
			if categoryType != "" {
				parsed, err := model.ParseCategoryType(categoryType)
				if err != nil {
					return friendlyError(fmt.Errorf("%w: %v", categories.ErrInvalidCategory, err))
				}
				filter.Type = parsed
			}

			return a.withManager(cmd, func(ctx context.Context, m *categories.Manager, _ service.Storage) error {
				cats, err := m.List(ctx, filter)
				if err != nil {
					return fmt.Errorf("failed to list categories: %w", err)
				}

				if len(cats) == 0 {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No categories found. Use 'famney categories seed' to add the defaults."))
					return err
				}

				return cli.RenderCategoryTable(cmd.OutOrStdout(), cats)
			})
		},
	}

	cmd.Flags().StringVar(&categoryType, "type", "", "only list categories of this type (expense, income)")
	cmd.Flags().BoolVar(&all, "all", false, "include deactivated categories")

	return cmd
}

func (a *app) showCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|name>",
		Short: "Show a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			familyID, err := a.familyID()
			if err != nil {
				return err
			}

			return a.withManager(cmd, func(ctx context.Context, m *categories.Manager, _ service.Storage) error {
				cat, err := m.Resolve(ctx, familyID, args[0])
				if err != nil {
					return friendlyError(err)
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCategoryDetail(cat))
				return err
			})
		},
	}
}

func (a *app) addCategoryCmd() *cobra.Command {
	var (
		categoryType string
		description  string
		isDefault    bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long:  `Create a new income or expense category for the family.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			familyID, err := a.familyID()
			if err != nil {
				return err
			}

			return a.withManager(cmd, func(ctx context.Context, m *categories.Manager, _ service.Storage) error {
				cat, err := m.Create(ctx, categories.CreateRequest{
					FamilyID:    familyID,
					Name:        args[0],
					Type:        categoryType,
					Description: description,
					IsDefault:   isDefault,
				})
				if err != nil {
					return friendlyError(err)
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %s (ID: %s)", cat.DisplayName(), cat.ID())))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&categoryType, "type", string(model.CategoryTypeExpense), "category type (expense, income)")
	cmd.Flags().StringVar(&description, "description", "", "category description")
	cmd.Flags().BoolVar(&isDefault, "default", false, "mark the category as a protected default")

	return cmd
}

func (a *app) updateCategoryCmd() *cobra.Command {
	var (
		name         string
		categoryType string
		description  string
	)

	cmd := &cobra.Command{
		Use:   "update <id|name>",
		Short: "Update a category",
		Long:  `Change the name, type or description of an existing category.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			familyID, err := a.familyID()
			if err != nil {
				return err
			}

			var update model.CategoryUpdate
			if cmd.Flags().Changed("name") {
				update.Name = &name
			}
			if cmd.Flags().Changed("type") {
				t := model.CategoryType(categoryType)
				update.Type = &t
			}
			if cmd.Flags().Changed("description") {
				update.Description = &description
			}
			if update.IsEmpty() {
				return fmt.Errorf("must specify --name, --type or --description to update")
			}

			return a.withManager(cmd, func(ctx context.Context, m *categories.Manager, _ service.Storage) error {
				cat, err := m.Resolve(ctx, familyID, args[0])
				if err != nil {
					return friendlyError(err)
				}

				updated, err := m.Update(ctx, cat.ID(), update)
				if err != nil {
					return friendlyError(err)
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Updated category "+updated.DisplayName()))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new category name")
	cmd.Flags().StringVar(&categoryType, "type", "", "new category type (expense, income)")
	cmd.Flags().StringVar(&description, "description", "", "new category description")

	return cmd
}

func (a *app) activateCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id|name>",
		Short: "Reactivate a deactivated category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setActive(cmd, args[0], true)
		},
	}
}

func (a *app) deactivateCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id|name>",
		Short: "Deactivate a category",
		Long:  `Hide a category from lists and new transactions while keeping its history.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setActive(cmd, args[0], false)
		},
	}
}

func (a *app) setActive(cmd *cobra.Command, idOrName string, active bool) error {
	familyID, err := a.familyID()
	if err != nil {
		return err
	}

	return a.withManager(cmd, func(ctx context.Context, m *categories.Manager, _ service.Storage) error {
		cat, err := m.Resolve(ctx, familyID, idOrName)
		if err != nil {
			return friendlyError(err)
		}

		verb := "Deactivated"
		if active {
			verb = "Activated"
			cat, err = m.Activate(ctx, cat.ID())
		} else {
			cat, err = m.Deactivate(ctx, cat.ID())
		}
		if err != nil {
			return friendlyError(err)
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s category %s", verb, cat.DisplayName())))
		return err
	})
}

func (a *app) deleteCategoryCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a category",
		Long: `Permanently delete a category. Default categories and categories
that still have transactions cannot be deleted; deactivate them instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			familyID, err := a.familyID()
			if err != nil {
				return err
			}

			return a.withManager(cmd, func(ctx context.Context, m *categories.Manager, _ service.Storage) error {
				cat, err := m.Resolve(ctx, familyID, args[0])
				if err != nil {
					return friendlyError(err)
				}

				if !force {
					reader := cli.NewNonBlockingReader(cmd.InOrStdin())
					ok, err := cli.Confirm(ctx, reader, cmd.OutOrStdout(), fmt.Sprintf("Delete category %q?", cat.Name()))
					if err != nil {
						return err
					}
					if !ok {
						_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Deletion canceled"))
						return err
					}
				}

				if err := m.Delete(ctx, cat.ID()); err != nil {
					return friendlyError(err)
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted category "+cat.Name()))
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")

	return cmd
}

func (a *app) seedCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add the default categories",
		Long:  `Add the default income and expense categories the family does not have yet.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			familyID, err := a.familyID()
			if err != nil {
				return err
			}

			return a.withManager(cmd, func(ctx context.Context, m *categories.Manager, _ service.Storage) error {
				created, err := m.SeedDefaults(ctx, familyID)
				if err != nil {
					return fmt.Errorf("failed to seed default categories: %w", err)
				}

				msg := fmt.Sprintf("Added %d default categories", created)
				if created == 0 {
					msg = "All default categories are already present"
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
				return err
			})
		},
	}
}

// exchangeFormat picks the file format from the flag or the file extension.
func exchangeFormat(format, path string) (string, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			format = "csv"
		default:
			format = "yaml"
		}
	}

	switch strings.ToLower(format) {
	case "yaml", "yml":
		return "yaml", nil
	case "csv":
		return "csv", nil
	default:
		return "", fmt.Errorf("unsupported format %q (use yaml or csv)", format)
	}
}

func (a *app) importCategoriesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import categories from YAML or CSV",
		Long: `Merge a category catalogue into the family's categories. Categories are
matched by name; new ones are created and existing ones updated. Use "-" to read
from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			familyID, err := a.familyID()
			if err != nil {
				return err
			}

			fileFormat, err := exchangeFormat(format, args[0])
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}

			progress := cli.NewProgressReporter(cmd.ErrOrStderr(), "Importing categories...")

			return a.withManager(cmd, func(ctx context.Context, m *categories.Manager, _ service.Storage) error {
				var result categories.ImportResult
				if fileFormat == "csv" {
					result, err = m.ImportCSV(ctx, in, familyID)
				} else {
					result, err = m.ImportYAML(ctx, in, familyID)
				}
				if err != nil {
					return friendlyError(err)
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
					"Imported categories: %d created, %d updated, %d unchanged",
					result.Created, result.Updated, result.Unchanged)))
				return err
			}, categories.WithProgress(progress.Update))
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "file format (yaml, csv); guessed from the extension when empty")

	return cmd
}

func (a *app) exportCategoriesCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export categories as YAML or CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			familyID, err := a.familyID()
			if err != nil {
				return err
			}

			fileFormat, err := exchangeFormat(format, output)
			if err != nil {
				return err
			}

			return a.withManager(cmd, func(ctx context.Context, m *categories.Manager, _ service.Storage) error {
				var out io.Writer = cmd.OutOrStdout()
				if output != "" && output != "-" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", output, err)
					}
					defer func() { _ = f.Close() }()
					out = f
				}

				if fileFormat == "csv" {
					return m.ExportCSV(ctx, out, familyID)
				}
				return m.ExportYAML(ctx, out, familyID)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "file format (yaml, csv); guessed from --output when empty")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: standard output)")

	return cmd
}
