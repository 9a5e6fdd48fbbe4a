package style

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/bpack/pkg/types"
)

// StatusStyle returns the pterm style of a dependency status
func StatusStyle(status types.DisplayStatus) *pterm.Style {
	switch status {
	case types.StatusOK:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgWhite)
	case types.StatusNewer:
		return pterm.NewStyle(pterm.FgCyan)
	case types.StatusOutdated:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	case types.StatusMissing, types.StatusMissingFeatures:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// describe explains a dependency status in one phrase
func describe(d types.DisplayDependency) string {
	switch d.Status {
	case types.StatusOK:
		return d.Current
	case types.StatusNewer:
		return fmt.Sprintf("%s (pack recommends %s)", d.Current, d.Recommended)
	case types.StatusOutdated:
		return fmt.Sprintf("%s → %s", d.Current, d.Recommended)
	case types.StatusMissing:
		return fmt.Sprintf("not declared, pack recommends %s", d.Recommended)
	case types.StatusMissingFeatures:
		return fmt.Sprintf("%s, missing features: %s", d.Current, strings.Join(d.MissingFeatures, ", "))
	}
	return ""
}

// RenderDependencyStatus renders one dependency line
func RenderDependencyStatus(d types.DisplayDependency) string {
	label := StatusStyle(d.Status).Sprint(fmt.Sprintf("%-16s", d.Status))
	name := fmt.Sprintf("%-20s", d.Name)
	return fmt.Sprintf("    %s : %s : %s", label, name, describe(d))
}

// RenderPackStatus renders a pack header followed by its dependencies
func RenderPackStatus(p types.DisplayPack) string {
	var b strings.Builder

	header := fmt.Sprintf("%s %s [%s]:", p.Name, p.Version, strings.Join(p.Groups, ", "))
	switch p.Status {
	case types.StatusMissing, types.StatusMissingFeatures:
		header = StatusStyle(p.Status).Sprint(header)
	case types.StatusUnknown:
		header = MutedStyle.Render(header)
	}
	b.WriteString(header + "\n")

	if p.Message != "" {
		b.WriteString("    " + p.Message + "\n")
	}
	for _, d := range p.Dependencies {
		b.WriteString(RenderDependencyStatus(d) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderChange renders a planned change, colored by its dependency kind
func RenderChange(c types.ChangeInfo) string {
	symbol := c.Symbol
	switch c.Symbol {
	case "+":
		symbol = SuccessStyle.Render(symbol)
	case "-":
		symbol = ErrorStyle.Render(symbol)
	default:
		symbol = InfoStyle.Render(symbol)
	}
	text := strings.TrimPrefix(c.Text, c.Symbol+" ")
	if c.Kind != "" {
		text = Render(fmt.Sprintf("[%s]%s[/%s]", c.Kind, text, c.Kind))
	}
	return symbol + " " + text
}
