package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/nadavh/aptwatch/internal/model"
)

// ApprovalPrompter implements the interactive approval gates for listing
// processing. It renders listing details, asks yes/no questions, and shows
// per-bucket progress.
type ApprovalPrompter struct {
	writer        io.Writer
	reader        *NonBlockingReader
	progressBar   *progressbar.ProgressBar
	barBucket     string
	reverseHebrew bool
}

// NewApprovalPrompter creates a prompter reading answers from reader and
// writing to writer. When reverseHebrew is set, Hebrew text is flipped for
// terminals that render everything left to right.
func NewApprovalPrompter(reader io.Reader, writer io.Writer, reverseHebrew bool) *ApprovalPrompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &ApprovalPrompter{
		reader:        NewNonBlockingReader(reader),
		writer:        writer,
		reverseHebrew: reverseHebrew,
	}
}

// display runs operator-facing Hebrew text through terminal formatting.
func (p *ApprovalPrompter) display(text string) string {
	if p.reverseHebrew {
		return FormatHebrew(text)
	}
	return text
}

// ConfirmSend is the first approval gate: the listing's location and price,
// before any detail-page visit.
func (p *ApprovalPrompter) ConfirmSend(ctx context.Context, listing *model.Listing, match model.StreetMatch) (bool, error) {
	content := p.formatListingSummary(listing, match)
	if _, err := fmt.Fprintln(p.writer, RenderBox("Listing Review", content)); err != nil {
		return false, fmt.Errorf("failed to write listing box: %w", err)
	}

	return p.promptYesNo(ctx, "Process this listing?")
}

// ConfirmConstraint surfaces an allow-list constraint before any other work
// on the listing.
func (p *ApprovalPrompter) ConfirmConstraint(ctx context.Context, listing *model.Listing, match model.StreetMatch) (bool, error) {
	street := p.display(listing.Location.Street)
	if _, err := fmt.Fprintln(p.writer, FormatWarning(fmt.Sprintf("%s: %s", street, p.display(match.Constraint)))); err != nil {
		return false, fmt.Errorf("failed to write constraint: %w", err)
	}
	if _, err := fmt.Fprintln(p.writer, SubtleStyle.Render(listing.URL)); err != nil {
		return false, fmt.Errorf("failed to write url: %w", err)
	}

	return p.promptYesNo(ctx, "Street has a constraint, continue?")
}

// ConfirmUnsupportedSkip offers to skip a listing whose street is off-list.
// Answering yes skips; answering no pushes it through the full flow.
func (p *ApprovalPrompter) ConfirmUnsupportedSkip(ctx context.Context, listing *model.Listing) (bool, error) {
	location := p.display(fmt.Sprintf("%s, %s", listing.Location.Street, listing.Location.City))
	if _, err := fmt.Fprintln(p.writer, FormatInfo("Street not on the allow-list: "+location)); err != nil {
		return false, fmt.Errorf("failed to write unsupported notice: %w", err)
	}
	if _, err := fmt.Fprintln(p.writer, SubtleStyle.Render(listing.URL)); err != nil {
		return false, fmt.Errorf("failed to write url: %w", err)
	}

	return p.promptYesNo(ctx, "Skip this listing?")
}

// ConfirmFormat is the second approval gate: the exact notification line
// that would be sent.
func (p *ApprovalPrompter) ConfirmFormat(ctx context.Context, listing *model.Listing, formatted string) (bool, error) {
	if _, err := fmt.Fprintln(p.writer, RenderBox("Notification Preview", p.display(formatted))); err != nil {
		return false, fmt.Errorf("failed to write preview box: %w", err)
	}
	if _, err := fmt.Fprintln(p.writer, SubtleStyle.Render(listing.URL)); err != nil {
		return false, fmt.Errorf("failed to write url: %w", err)
	}

	return p.promptYesNo(ctx, "Send notification?")
}

// NotifyAutoReject informs the operator of a policy rejection.
func (p *ApprovalPrompter) NotifyAutoReject(listing *model.Listing, reason string) {
	message := fmt.Sprintf("Auto-rejected (%s): %s", reason, listing.URL)
	if _, err := fmt.Fprintln(p.writer, FormatWarning(message)); err != nil {
		slog.Warn("Failed to write auto-reject notice", "error", err)
	}
}

// BatchProgress renders a progress bar for the current bucket. A new bar is
// started whenever the bucket changes.
func (p *ApprovalPrompter) BatchProgress(bucket string, index, total int) {
	if p.progressBar == nil || p.barBucket != bucket {
		p.barBucket = bucket
		p.progressBar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.writer),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription(fmt.Sprintf("[cyan][bold]Processing %s listings...[reset]", bucket)),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				if _, err := fmt.Fprintln(p.writer); err != nil {
					slog.Warn("Failed to write newline after progress bar", "error", err)
				}
			}),
		)
	}

	if err := p.progressBar.Set(index); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
	if _, err := fmt.Fprintln(p.writer); err != nil {
		slog.Warn("Failed to write newline", "error", err)
	}
}

func (p *ApprovalPrompter) formatListingSummary(listing *model.Listing, match model.StreetMatch) string {
	locationParts := []string{listing.Location.Street}
	if listing.Location.Neighborhood != "" {
		locationParts = append(locationParts, listing.Location.Neighborhood)
	} else if match.Neighborhood != "" {
		locationParts = append(locationParts, match.Neighborhood)
	}
	locationParts = append(locationParts, listing.Location.City)

	details := p.display(strings.Join(locationParts, ", ")) + "\n"

	if listing.Specs.Rooms > 0 {
		details += fmt.Sprintf("  Rooms: %s\n", strconv.FormatFloat(listing.Specs.Rooms, 'f', -1, 64))
	}
	if listing.Specs.SizeSqm > 0 {
		details += fmt.Sprintf("  Size: %d sqm\n", listing.Specs.SizeSqm)
	}
	if listing.Price > 0 {
		details += fmt.Sprintf("  Price: %d\n", listing.Price)
	}
	if listing.IsAgency {
		details += fmt.Sprintf("  Agency: %s\n", p.display(listing.AgencyName))
	}
	if len(listing.Tags) > 0 {
		details += fmt.Sprintf("  Tags: %s\n", p.display(strings.Join(listing.Tags, ", ")))
	}

	return details + SubtleStyle.Render(listing.URL)
}

// promptYesNo loops until the operator answers y or n.
func (p *ApprovalPrompter) promptYesNo(ctx context.Context, prompt string) (bool, error) {
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt+" (y/n)")); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, ErrInputCancelled) {
				return false, ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return false, fmt.Errorf("input terminated")
			}
			return false, err
		}

		switch strings.ToLower(input) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Please answer y or n.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}
