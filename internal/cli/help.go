package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Custom help styles
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(accentColor).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AA00")).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// StyledHelpPrinter returns a kong help printer with Lipgloss styling. At
// the top level it lists the commands; for a selected command it lists
// that command's arguments and every flag in scope, with environment
// variable mirrors and defaults.
func StyledHelpPrinter(options kong.HelpOptions) kong.HelpPrinter {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		node := ctx.Selected()
		if node == nil {
			node = ctx.Model.Node
		}

		sb.WriteString(helpTitleStyle.Render("LudEQ"))
		sb.WriteString("\n")
		desc := ctx.Model.Help
		if node != ctx.Model.Node && node.Help != "" {
			desc = node.Help
		}
		if desc != "" {
			sb.WriteString(helpDescStyle.Render(desc))
			sb.WriteString("\n")
		}

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(usage(ctx, node))
		sb.WriteString("\n")

		if cmds := getCommands(node); len(cmds) > 0 {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render("Commands:"))
			sb.WriteString("\n")
			writeColumns(&sb, cmds, helpArgStyle)
		}

		if args := getArguments(node); len(args) > 0 {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render("Arguments:"))
			sb.WriteString("\n")
			writeColumns(&sb, args, helpArgStyle)
		}

		if flags := getFlags(node); len(flags) > 0 {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render("Flags:"))
			sb.WriteString("\n")
			writeColumns(&sb, flags, helpFlagStyle)
		}

		sb.WriteString("\n")
		_, err := fmt.Fprint(ctx.Stdout, sb.String())

		return err
	}
}

func usage(ctx *kong.Context, node *kong.Node) string {
	if node == ctx.Model.Node {
		return fmt.Sprintf("%s <command> [flags]", ctx.Model.Name)
	}

	return fmt.Sprintf("%s %s", ctx.Model.Name, node.Summary())
}

type entry struct {
	name   string
	help   string
	suffix string
}

func writeColumns(sb *strings.Builder, entries []entry, style lipgloss.Style) {
	width := 0
	for _, e := range entries {
		width = max(width, len(e.name))
	}

	for _, e := range entries {
		sb.WriteString("  ")
		sb.WriteString(style.Render(fmt.Sprintf("%-*s", width, e.name)))
		if e.help != "" {
			sb.WriteString("  ")
			sb.WriteString(e.help)
		}
		if e.suffix != "" {
			sb.WriteString(" ")
			sb.WriteString(helpDefaultStyle.Render(e.suffix))
		}
		sb.WriteString("\n")
	}
}

func getCommands(node *kong.Node) []entry {
	var cmds []entry
	for _, child := range node.Children {
		if child.Hidden || child.Type != kong.CommandNode {
			continue
		}
		cmds = append(cmds, entry{name: child.Summary(), help: child.Help})
	}

	return cmds
}

func getArguments(node *kong.Node) []entry {
	var args []entry
	for _, arg := range node.Positional {
		args = append(args, entry{name: arg.Summary(), help: arg.Help})
	}

	return args
}

func getFlags(node *kong.Node) []entry {
	flags := []entry{{name: "-h, --help", help: "Show context-sensitive help."}}

	for _, group := range node.AllFlags(true) {
		for _, f := range group {
			if f.Name == "help" {
				continue
			}

			name := "--" + f.Name
			if f.Short != 0 {
				name = fmt.Sprintf("-%c, %s", f.Short, name)
			}
			if !f.IsBool() && !f.IsCounter() {
				name += "=" + f.FormatPlaceHolder()
			}

			var extra []string
			if len(f.Envs) > 0 {
				extra = append(extra, "$"+strings.Join(f.Envs, ", $"))
			}
			if f.HasDefault && f.Default != "" && !f.IsBool() {
				extra = append(extra, "default: "+f.Default)
			}

			e := entry{name: name, help: f.Help}
			if len(extra) > 0 {
				e.suffix = "(" + strings.Join(extra, "; ") + ")"
			}
			flags = append(flags, e)
		}
	}

	return flags
}
