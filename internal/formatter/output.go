package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/miradorstack/mirador-resolver/internal/models"
	"github.com/miradorstack/mirador-resolver/internal/utils"
	"github.com/miradorstack/mirador-resolver/internal/workflow"
)

// Formats accepted by the display helpers.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// DisplaySnapshot writes the session snapshot in the requested format.
func DisplaySnapshot(w io.Writer, snap workflow.Snapshot, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, snap)
	case FormatYAML:
		return writeYAML(w, snap)
	case FormatHuman:
		fallthrough
	default:
		displayHuman(w, snap)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// writeYAML renders v through its JSON form so field names match the wire format.
func writeYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	blockStyle(&node)
	output, err := yaml.Marshal(&node)
	if err != nil {
		return err
	}
	_, err = w.Write(output)
	return err
}

func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	for _, child := range n.Content {
		blockStyle(child)
	}
}

func displayHuman(w io.Writer, snap workflow.Snapshot) {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)
	cyan.Fprintf(w, "Resolver: %s\n", snap.State)
	if snap.Context != nil {
		fmt.Fprintf(w, "   Page: %s\n", snap.Context.Page)
		fmt.Fprintf(w, "   Action: %s\n", snap.Context.Action)
		if snap.Context.HasError() {
			fmt.Fprintf(w, "   Error: %s\n", color.RedString(snap.Context.ErrorMessage))
		}
	}
	fmt.Fprintln(w)

	if snap.Analysis != nil {
		DisplayAnalysis(w, *snap.Analysis)
	}

	if snap.Attempt != nil {
		yellow.Fprintf(w, "REMEDIATION: %s\n", snap.Attempt.Action)
		for _, step := range snap.Attempt.Steps {
			fmt.Fprintf(w, "   %s\n", StepLine(step))
		}
		if snap.Attempt.Outcome == models.OutcomeFailed && snap.Attempt.FailureReason != "" {
			red.Fprintf(w, "   Failed: ")
			fmt.Fprintln(w, snap.Attempt.FailureReason)
		}
		fmt.Fprintln(w)
	}

	if snap.Ticket != nil {
		white.Fprintf(w, "TICKET %s\n", snap.Ticket.ID)
		fmt.Fprintf(w, "   %s\n\n", snap.Ticket.Summary)
		fmt.Fprintln(w, "   Timeline:")
		for _, entry := range snap.Ticket.Timeline {
			fmt.Fprintf(w, "      %s  %s\n", color.HiBlackString(utils.ClockLabel(entry.Time)), entry.Action)
		}
		fmt.Fprintf(w, "   Environment: %s / %s on %s\n", snap.Ticket.Environment.Browser, snap.Ticket.Environment.OS, snap.Ticket.Environment.Page)
		if len(snap.Ticket.Hypotheses) > 0 {
			fmt.Fprintln(w, "   Hypotheses:")
			for i, h := range snap.Ticket.Hypotheses {
				fmt.Fprintf(w, "      %d. %s\n", i+1, h)
			}
		}
		if len(snap.Ticket.Logs) > 0 {
			fmt.Fprintln(w, "   Logs:")
			for _, line := range snap.Ticket.Logs {
				fmt.Fprintf(w, "      %s\n", color.HiBlackString(line))
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "%s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

// DisplayAnalysis writes the three-part diagnosis and its confidence.
func DisplayAnalysis(w io.Writer, a models.ResolverAnalysis) {
	red := color.New(color.FgRed, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	red.Fprintln(w, "WHAT IS HAPPENING:")
	fmt.Fprintln(w, wrapText(a.WhatIsHappening, 80, "   "))
	fmt.Fprintln(w)

	cyan.Fprintln(w, "WHAT WE CHECKED:")
	fmt.Fprintln(w, wrapText(a.WhatChecked.Description, 80, "   "))
	for _, src := range a.WhatChecked.Sources {
		fmt.Fprintf(w, "   - [%s] %s\n", src.Type, src.Title)
	}
	fmt.Fprintln(w)

	green.Fprintln(w, "WHAT USUALLY FIXES THIS:")
	fmt.Fprintln(w, wrapText(a.WhatUsuallyFixes.Description, 80, "   "))
	for i, step := range a.WhatUsuallyFixes.Steps {
		fmt.Fprintf(w, "   %d. %s\n", i+1, step)
	}
	fmt.Fprintln(w)

	confidenceColor(a.Confidence.Level).Fprintf(w, "CONFIDENCE: %s\n", strings.ToUpper(string(a.Confidence.Level)))
	fmt.Fprintf(w, "   %s\n\n", a.Confidence.Explanation)
}

// StepLine renders one remediation step with its status icon.
func StepLine(step models.RemediationStep) string {
	return fmt.Sprintf("%s %s", stepIcon(step.Status), step.Description)
}

// DisplayFailurePrompt tells the user that repeated failures unlocked the resolver.
func DisplayFailurePrompt(w io.Writer, featureID string, count int, last time.Time, now time.Time) {
	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(w, "%s has failed %d times (last %s). Want help resolving it?\n",
		featureID, count, strings.ToLower(utils.TimeAgo(last, now)))
}

func confidenceColor(level models.ConfidenceLevel) *color.Color {
	switch level {
	case models.ConfidenceHigh:
		return color.New(color.FgGreen, color.Bold)
	case models.ConfidenceMedium:
		return color.New(color.FgYellow, color.Bold)
	case models.ConfidenceLow:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgWhite)
	}
}

func stepIcon(status models.StepStatus) string {
	switch status {
	case models.StepCompleted:
		return color.GreenString("✓")
	case models.StepFailed:
		return color.RedString("✗")
	case models.StepRunning:
		return color.YellowString("…")
	default:
		return color.HiBlackString("○")
	}
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		current := indent
		for _, word := range words {
			switch {
			case len(current)+len(word)+1 > width && current != indent:
				result.WriteString(current + "\n")
				current = indent + word
			case current == indent:
				current += word
			default:
				current += " " + word
			}
		}
		result.WriteString(current + "\n")
	}
	return strings.TrimSuffix(result.String(), "\n")
}
