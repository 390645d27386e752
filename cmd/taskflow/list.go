package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"taskflow/pkg/client"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// 每种资源在表格中展示的列
var listColumns = map[string][]string{
	"workspaces": {"id", "name", "description"},
	"boards":     {"id", "name", "workspace_id"},
	"cards":      {"id", "title", "status", "board_id"},
}

func listCmd(open opener) *cobra.Command {
	var page, size int
	var filters []string

	cmd := &cobra.Command{
		Use:       "list <workspaces|boards|cards>",
		Short:     "List resources page by page",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"workspaces", "boards", "cards"},
		RunE: func(cmd *cobra.Command, args []string) error {
			resource := args[0]
			if _, ok := listColumns[resource]; !ok {
				return fmt.Errorf("unknown resource %q", resource)
			}
			query, err := parseFilters(filters)
			if err != nil {
				return err
			}

			a, err := open()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			p, err := a.client.List(ctx, resource, page, size, query)
			if err != nil {
				return errors.New(client.UserMessage(err))
			}
			renderPage(cmd.OutOrStdout(), resource, p)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "Page number, starting at 0")
	cmd.Flags().IntVar(&size, "size", 20, "Page size")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Filter as key=value, repeatable")
	return cmd
}

func parseFilters(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, want key=value", pair)
		}
		values.Add(key, value)
	}
	return values, nil
}

func renderPage(w io.Writer, resource string, p *client.Page) {
	columns := listColumns[resource]

	table := tablewriter.NewWriter(w)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = strings.ToUpper(c)
	}
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetColumnSeparator("|")
	table.SetAutoWrapText(false)

	for _, item := range p.Items {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = item.Get(c).String()
		}
		table.Append(row)
	}
	table.Render()

	fmt.Fprintf(w, "page %d of %d, %d %s in total\n", p.Number+1, max(p.TotalPages, 1), p.TotalElements, resource)
}
