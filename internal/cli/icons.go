package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/orchestree/orchestree/pkg/icons"
)

// iconsCommand creates the icon rule inspection command.
func (c *CLI) iconsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "icons",
		Short: "Inspect icon resolution rules",
	}

	cmd.AddCommand(c.iconsListCommand())
	cmd.AddCommand(c.iconsMatchCommand())

	return cmd
}

func (c *CLI) loadResolver() (*icons.Resolver, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return newResolver(cfg)
}

// iconsListCommand creates the "icons list" subcommand.
func (c *CLI) iconsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List icon rules in resolution order",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.loadResolver()
			if err != nil {
				return err
			}

			rules := r.Rules()
			rows := make([][]string, 0, len(rules))
			missing := 0
			for i, rule := range rules {
				found := iconSuccess
				if !fileExists(r.Target(rule)) {
					found = iconError
					missing++
				}
				rows = append(rows, []string{fmt.Sprint(i + 1), rule.Pattern, rule.Target, found})
			}
			fmt.Println(rulesTable(rows))

			printKeyValue("Fallback", r.Fallback())
			printKeyValue("Base dir", r.BaseDir())
			if missing > 0 {
				printWarning("%d rule target(s) not found", missing)
			}
			return nil
		},
	}
}

// iconsMatchCommand creates the "icons match" subcommand.
func (c *CLI) iconsMatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "match IDENTIFIER...",
		Short: "Show which icon each identifier resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.loadResolver()
			if err != nil {
				return err
			}
			for _, id := range args {
				rule, ok := r.Match(id)
				if !ok {
					printWarning("%s: no rule matches, using fallback", id)
					printFile(r.Fallback())
					continue
				}
				printSuccess("%s %s %s", id, StyleDim.Render("matches"), StyleHighlight.Render(rule.Pattern))
				printFile(r.Target(rule))
			}
			return nil
		},
	}
}

func rulesTable(rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Pattern", "Target", "Found").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorDim)
			case col == 3 && rows[row][3] == iconError:
				return lipgloss.NewStyle().Foreground(colorRed)
			case col == 3:
				return lipgloss.NewStyle().Foreground(colorGreen)
			default:
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
		}).
		Render()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
