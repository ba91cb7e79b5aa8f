package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"go-resource-admin/internal/admin"
	"go-resource-admin/internal/config"
	"go-resource-admin/internal/generator"
	"go-resource-admin/internal/logging"
	"go-resource-admin/internal/model"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// cli holds the state shared by all commands.
type cli struct {
	jsonOutput bool
	typeName   string
	fs         afero.Fs
	site       *site
}

func newRootCmd() *cobra.Command {
	c := &cli{fs: afero.NewOsFs()}

	root := &cobra.Command{
		Use:   "resource-cli",
		Short: "Manage the data sources and events of a site",
		Long: `resource-cli lists, creates, deletes and attaches the data sources and
events of a site. Sort preferences and page attachments are shared with the
admin server.

Configuration can be provided via flags, RESADMIN_* environment variables or
a configuration file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			logger := logging.New(logging.Config{
				Level:  logging.ParseLevel(cfg.Log.Level),
				Format: logging.ParseFormat(cfg.Log.Format),
				Output: cmd.ErrOrStderr(),
			})
			c.site, err = openSite(cfg, c.fs, logger)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.site == nil {
				return nil
			}
			return c.site.Close()
		},
	}

	config.RegisterFlags(root.PersistentFlags())
	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "Output command results in JSON format")
	root.PersistentFlags().StringVarP(&c.typeName, "type", "t", "datasource", "Resource type: datasource or event")

	root.AddCommand(
		c.listCmd(),
		c.newCmd(),
		c.bulkCmd("delete", "Delete resources and detach them from their pages", func(int64) string { return "delete" }, false),
		c.bulkCmd("attach", "Attach resources to a page", func(id int64) string { return admin.AttachTo(id).String() }, true),
		c.bulkCmd("detach", "Detach resources from a page", func(id int64) string { return admin.DetachFrom(id).String() }, true),
		c.bulkCmd("attach-all", "Attach resources to every page", func(int64) string { return "attach-all-pages" }, false),
		c.bulkCmd("detach-all", "Detach resources from every page", func(int64) string { return "detach-all-pages" }, false),
		c.unsortCmd(),
		c.pagesCmd(),
		c.templateCmd(),
	)
	return root
}

func (c *cli) resourceType() (model.ResourceType, error) {
	return model.ParseResourceType(c.typeName)
}

func (c *cli) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printAlerts writes alerts and returns an error when any of them is one.
func printAlerts(w io.Writer, alerts []model.Alert) error {
	failed := 0
	for _, a := range alerts {
		fmt.Fprintf(w, "%s: %s\n", a.Severity, stripCode(a.Message))
		if a.Severity == model.SeverityError {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d item(s) failed", failed)
	}
	return nil
}

var codeStripper = strings.NewReplacer("<code>", "", "</code>", "", "&lt;", "<", "&gt;", ">", "&amp;", "&")

func stripCode(s string) string { return codeStripper.Replace(s) }

type listedResource struct {
	Handle      string   `json:"handle"`
	Name        string   `json:"name"`
	Source      string   `json:"source,omitempty"`
	Pages       []string `json:"pages"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	Author      string   `json:"author,omitempty"`
	Version     string   `json:"version,omitempty"`
}

func (c *cli) listCmd() *cobra.Command {
	var field, order string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources in the stored sort order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.resourceType()
			if err != nil {
				return err
			}
			req := admin.SortRequest{Type: t, Field: field, Order: order, CurrentURL: t.PageContext()}
			res, err := c.site.controller.Index(req)
			if err != nil {
				return err
			}
			if res.IsRedirect() {
				// The new preference was stored; list with it.
				if res, err = c.site.controller.Index(admin.SortRequest{Type: t, CurrentURL: t.PageContext()}); err != nil {
					return err
				}
			}

			rows := make([]listedResource, 0, len(res.View.Rows))
			for _, row := range res.View.Rows {
				r := row.Resource
				lr := listedResource{
					Handle:  r.Handle,
					Name:    r.Name,
					Source:  r.Source,
					Pages:   make([]string, 0, len(row.Pages)),
					Author:  r.Author.Name,
					Version: r.Version,
				}
				if !r.ReleaseDate.IsZero() {
					lr.ReleaseDate = r.ReleaseDate.Format("2006-01-02")
				}
				for _, p := range row.Pages {
					lr.Pages = append(lr.Pages, p.Title)
				}
				rows = append(rows, lr)
			}

			out := cmd.OutOrStdout()
			if c.jsonOutput {
				return c.printJSON(out, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintf(out, "No %s found.\n", strings.ToLower(t.Label()))
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "HANDLE\tNAME\tSOURCE\tPAGES\tRELEASED\tAUTHOR\tVERSION")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					r.Handle, r.Name, r.Source, strings.Join(r.Pages, ", "), r.ReleaseDate, r.Author, r.Version)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&field, "sort", "", "Sort by name, source, release-date or author (stored)")
	cmd.Flags().StringVar(&order, "order", "", "Sort order: asc or desc (stored)")
	return cmd
}

func (c *cli) newCmd() *cobra.Command {
	var opts generator.Options
	cmd := &cobra.Command{
		Use:   "new NAME",
		Short: "Create a resource driver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.resourceType()
			if err != nil {
				return err
			}
			r, err := generator.GenerateResource(c.fs, c.site.drivers, t, args[0], opts)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.printJSON(cmd.OutOrStdout(), map[string]string{"handle": r.Handle, "path": r.Path})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q (%s)\n", t, r.Handle, r.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Source, "source", "", "Section or provider the resource reads from")
	cmd.Flags().StringVar(&opts.Author.Name, "author", "", "Author name")
	cmd.Flags().StringVar(&opts.Author.Email, "email", "", "Author email")
	cmd.Flags().StringVar(&opts.Version, "version", "", "Version (default "+generator.DefaultVersion+")")
	cmd.Flags().StringVar(&opts.Description, "description", "", "Description")
	return cmd
}

// bulkCmd builds a command that applies a "With Selected" action to the
// handles given as arguments.
func (c *cli) bulkCmd(use, short string, selector func(pageID int64) string, needsPage bool) *cobra.Command {
	var pageID int64
	cmd := &cobra.Command{
		Use:   use + " HANDLE...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.resourceType()
			if err != nil {
				return err
			}
			if needsPage && pageID <= 0 {
				return errors.New("--page is required")
			}
			res, err := c.site.controller.Bulk(admin.BulkRequest{
				Type:         t,
				CurrentURL:   t.PageContext(),
				Apply:        true,
				Items:        args,
				WithSelected: selector(pageID),
			})
			if err != nil {
				return err
			}
			return printAlerts(cmd.OutOrStdout(), res.Alerts)
		},
	}
	if needsPage {
		cmd.Flags().Int64Var(&pageID, "page", 0, "Page id")
	}
	return cmd
}

func (c *cli) unsortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unsort",
		Short: "Reset the stored sort order to name ascending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := c.resourceType()
			if err != nil {
				return err
			}
			if _, err := c.site.controller.Sort(admin.SortRequest{Type: t, Unsort: true, CurrentURL: t.PageContext()}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sorting of %s reset\n", strings.ToLower(t.Label()))
			return nil
		},
	}
}

func (c *cli) pagesCmd() *cobra.Command {
	pages := &cobra.Command{
		Use:   "pages",
		Short: "List and create pages",
	}

	pages.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pages with their full titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			titles, err := c.site.controller.PagesFlatView()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.jsonOutput {
				return c.printJSON(out, titles)
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE")
			for _, p := range titles {
				fmt.Fprintf(w, "%d\t%s\n", p.ID, p.Title)
			}
			return w.Flush()
		},
	})

	var page model.Page
	add := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page.Title = args[0]
			if page.Handle == "" {
				page.Handle = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(args[0])), " ", "-")
			}
			if err := c.site.pages.Create(&page); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatInt(page.ID, 10))
			return nil
		},
	}
	add.Flags().StringVar(&page.Handle, "handle", "", "Page handle (default: derived from the title)")
	add.Flags().Int64Var(&page.Parent, "parent", 0, "Parent page id")
	add.Flags().IntVar(&page.SortOrder, "sortorder", 0, "Position among siblings")
	pages.AddCommand(add)

	return pages
}

func (c *cli) templateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "override-template NAME",
		Short: "Copy a system template into the workspace for customisation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := generator.CopyTemplate(c.fs, c.site.cfg.Templates, c.site.cfg.Workspace, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}
}
