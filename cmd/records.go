package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"studentresults/internal/model"
	"studentresults/internal/rules"
	"studentresults/internal/service"
)

var (
	listQuery service.ListQuery
	formFlags rules.Form
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List student records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listQuery.SortBy != "" && !service.IsSortField(listQuery.SortBy) {
			return fmt.Errorf("unknown sort field %q", listQuery.SortBy)
		}
		return withApp(func(a *app) error {
			records, source, err := a.records.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			notice(cmd, source)
			return printJSON(cmd, map[string]interface{}{
				"data":    service.ApplyQuery(records, listQuery),
				"summary": service.Summarize(records),
			})
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show one student record with its derived fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(func(a *app) error {
			rec, source, err := a.records.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			notice(cmd, source)
			return printJSON(cmd, map[string]interface{}{
				"data":    rec,
				"passing": rules.IsPassing(rec.Marks),
				"tier":    rules.PerformanceTier(rec.Marks),
			})
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a student record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := rules.Check(formFlags)
		if err != nil {
			return err
		}
		return withApp(func(a *app) error {
			rec, source, err := a.records.Create(cmd.Context(), data)
			if err != nil {
				return err
			}
			notice(cmd, source)
			return printJSON(cmd, rec)
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Replace a student record; unset flags keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(func(a *app) error {
			current, _, err := a.records.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}

			form := rules.FormFromRecord(current.Data())
			changed := cmd.Flags().Changed
			if changed("roll") {
				form.RollNo = formFlags.RollNo
			}
			if changed("name") {
				form.Name = formFlags.Name
			}
			if changed("section") {
				form.Section = formFlags.Section
			}
			if changed("marks") {
				form.Marks = formFlags.Marks
				if !changed("grade") {
					form.Grade = ""
				}
			}
			if changed("grade") {
				form.Grade = formFlags.Grade
			}

			data, err := rules.Check(form)
			if err != nil {
				return err
			}
			rec, source, err := a.records.Update(cmd.Context(), id, data)
			if err != nil {
				return err
			}
			notice(cmd, source)
			return printJSON(cmd, rec)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a student record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(func(a *app) error {
			deleted, source, err := a.records.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			notice(cmd, source)
			return printJSON(cmd, map[string]bool{"deleted": deleted})
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import student records from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		return withApp(func(a *app) error {
			progress, err := a.importer.ImportCSV(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			if progress.Offline > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "working offline: %d records saved to the local cache\n", progress.Offline)
			}
			return printJSON(cmd, progress)
		})
	},
}

func init() {
	listCmd.Flags().StringVar(&listQuery.Search, "search", "", "match name, roll number or id")
	listCmd.Flags().StringVar(&listQuery.Section, "section", "", "only this section")
	listCmd.Flags().StringVar(&listQuery.Grade, "grade", "", "only this grade")
	listCmd.Flags().StringVar(&listQuery.SortBy, "sort-by", "", "id, rollNo, name, section, marks or grade")
	listCmd.Flags().StringVar(&listQuery.SortOrder, "sort-order", "asc", "asc or desc")

	for _, c := range []*cobra.Command{addCmd, updateCmd} {
		c.Flags().StringVar(&formFlags.RollNo, "roll", "", "roll number (digits only)")
		c.Flags().StringVar(&formFlags.Name, "name", "", "student name")
		c.Flags().StringVar(&formFlags.Section, "section", "", "section, up to 2 characters")
		c.Flags().StringVar(&formFlags.Marks, "marks", "", "marks between 0 and 100")
		c.Flags().StringVar(&formFlags.Grade, "grade", "", "grade override; derived from marks when empty")
	}
}

func withApp(fn func(*app) error) error {
	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

func notice(cmd *cobra.Command, source model.Source) {
	if source == model.SourceLocal {
		fmt.Fprintln(cmd.ErrOrStderr(), "working offline: served from the local cache")
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid student id %q", s)
	}
	return id, nil
}
