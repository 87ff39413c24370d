package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/seenimoa/tickerpulse/internal/knowledge"
	"github.com/seenimoa/tickerpulse/pkg/models"
)

func row(label string, value any) string {
	return LabelStyle.Render(label) + ValueStyle.Render(fmt.Sprint(value))
}

// RunSummary renders the counts of one pipeline run.
func RunSummary(r *models.RunReport) string {
	lines := []string{TitleStyle.Render(strings.ToUpper(string(r.Stage)) + " run")}
	if len(r.Inputs) > 0 {
		lines = append(lines, row("Inputs:", strings.Join(r.Inputs, ", ")))
	}
	if len(r.Backends) > 0 {
		lines = append(lines, row("Backends:", strings.Join(r.Backends, ", ")))
	}
	lines = append(lines, row("Records read:", r.RecordsRead))
	if r.Stage != models.StageImport {
		lines = append(lines, row("Rows matched:", r.RowsMatched))
		lines = append(lines, row("Rows written:", r.RowsWritten))
	}
	if r.Stage == models.StageProcess || r.Stage == models.StageImport {
		lines = append(lines, row("Rows inserted:", r.RowsInserted))
	}
	if r.ScoreFailures > 0 {
		lines = append(lines, LabelStyle.Render("Score failures:")+WarningStyle.Render(fmt.Sprint(r.ScoreFailures)))
	}
	if r.Output != "" {
		lines = append(lines, row("Output:", r.Output))
	}
	if d := r.Duration(); d > 0 {
		lines = append(lines, DimStyle.Render("took "+d.Round(1e6).String()))
	}
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// TickerSummaries renders stored per-ticker aggregates.
func TickerSummaries(sums []models.TickerSummary) string {
	if len(sums) == 0 {
		return DimStyle.Render("No stored rows.")
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%-8s %6s %6s %6s %8s  %s", "TICKER", "ROWS", "AI", "PROXY", "VADER", "LAST POSTED")))
	for _, s := range sums {
		avg := "-"
		if s.AvgLexical != nil {
			avg = fmt.Sprintf("%+.3f", *s.AvgLexical)
		}
		b.WriteByte('\n')
		b.WriteString(TickerStyle.Render(fmt.Sprintf("%-8s", s.Ticker)))
		fmt.Fprintf(&b, " %6d %6d %6d %8s  %s", s.Rows, s.AIRelated, s.ProxyRows, avg, s.LastPosted)
	}
	return b.String()
}

// IndexSummary renders keyword counts for every ticker in the index.
func IndexSummary(ix *knowledge.Index) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("%d tickers, %d buzz phrases, %d buzz entities",
		ix.Len(), len(ix.BuzzPhrases), len(ix.BuzzEntities))))
	for _, sym := range ix.Symbols() {
		p, _ := ix.Profile(sym)
		b.WriteByte('\n')
		b.WriteString(TickerStyle.Render(fmt.Sprintf("%-8s", sym)))
		fmt.Fprintf(&b, " keywords=%d partners=%d contexts=%d", len(p.Keywords), len(p.PartnerKeywords), len(p.KeywordContexts))
		if p.SourcePath != "" {
			b.WriteString(DimStyle.Render("  " + p.SourcePath))
		}
	}
	for _, s := range ix.Skipped {
		b.WriteByte('\n')
		b.WriteString(WarningStyle.Render("skipped " + s.Path + ": " + s.Reason))
	}
	return b.String()
}

// TickerProfile dumps the keyword sets of one ticker.
func TickerProfile(p *knowledge.TickerProfile) string {
	lines := []string{
		TitleStyle.Render(p.Ticker),
		row("Keywords:", strings.Join(p.Keywords, ", ")),
		row("Partner keywords:", strings.Join(p.PartnerKeywords, ", ")),
	}
	for _, kc := range p.KeywordContexts {
		lines = append(lines, DimStyle.Render("  "+kc.Keyword+" → ")+kc.Context)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Status renders a labelled ok/missing indicator.
func Status(label string, ok bool, detail string) string {
	mark := SuccessStyle.Render("✓")
	if !ok {
		mark = ErrorStyle.Render("✗")
	}
	out := mark + " " + LabelStyle.Render(label)
	if detail != "" {
		out += detail
	}
	return out
}
