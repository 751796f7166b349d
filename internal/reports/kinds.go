package reports

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leolynk/leolynk/internal/dashboard"
)

// derive adds the computed values each report kind prints on top of the submitted fields.
func derive(kind string, data map[string]any, flat map[string]string, now time.Time) {
	switch kind {
	case "activity":
		deriveActivity(data, flat, now)
	case "approval":
		deriveApproval(data, flat)
	case "script":
		deriveScript(data, flat)
	case "treasurer":
		deriveTreasurer(data, flat, now)
	}
	flat["generatedDate"] = now.Format("2 January 2006")
}

func deriveActivity(data map[string]any, flat map[string]string, now time.Time) {
	when := now
	if t, ok := parseDate(flat["date"]); ok {
		when = t
		flat["formattedDate"] = t.Format("2 January 2006")
	} else {
		flat["formattedDate"] = flat["date"]
	}
	if _, ok := data["leoisticYear"]; !ok {
		flat["leoisticYear"] = dashboard.YearWindow(dashboard.LeoisticYear(when)).Label
	}
}

func deriveApproval(data map[string]any, flat map[string]string) {
	items := objects(data["budget"])

	var total float64
	lines := make([]string, 0, len(items))
	for i, it := range items {
		amount := number(it["amount"])
		total += amount
		lines = append(lines, fmt.Sprintf("%d. %s - %s", i+1, text(it["item"]), money(amount)))
	}
	flat["budgetTotal"] = money(total)
	flat["budgetLines"] = strings.Join(lines, "\n")
}

func deriveScript(data map[string]any, flat map[string]string) {
	items := objects(data["programme"])

	lines := make([]string, 0, len(items))
	for i, it := range items {
		line := fmt.Sprintf("%d.", i+1)
		if t := text(it["time"]); t != "" {
			line += " " + t
		}
		line += " " + text(it["item"])
		if by := text(it["by"]); by != "" {
			line += " - " + by
		}
		lines = append(lines, line)
	}
	flat["programmeLines"] = strings.Join(lines, "\n")
	flat["programmeCount"] = strconv.Itoa(len(items))
}

func deriveTreasurer(data map[string]any, flat map[string]string, now time.Time) {
	opening := number(data["openingBalance"])

	income, incomeLines := ledger(objects(data["income"]))
	expenses, expenseLines := ledger(objects(data["expenses"]))

	flat["openingBalance"] = money(opening)
	flat["totalIncome"] = money(income)
	flat["totalExpenses"] = money(expenses)
	flat["closingBalance"] = money(opening + income - expenses)
	flat["incomeLines"] = strings.Join(incomeLines, "\n")
	flat["expenseLines"] = strings.Join(expenseLines, "\n")

	if _, ok := data["leoisticYear"]; !ok {
		flat["leoisticYear"] = dashboard.YearWindow(dashboard.LeoisticYear(now)).Label
	}
}

func ledger(items []map[string]any) (float64, []string) {
	var total float64
	lines := make([]string, 0, len(items))
	for _, it := range items {
		amount := number(it["amount"])
		total += amount
		lines = append(lines, fmt.Sprintf("%s: %s", text(it["description"]), money(amount)))
	}
	return total, lines
}

func objects(v any) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func number(v any) float64 {
	switch t := v.(type) {
	case json.Number:
		f, _ := t.Float64()
		return f
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", ""), 64)
		return f
	}
	return 0
}

func text(v any) string {
	return scalarString(v)
}

// money formats with two decimals and thousands separators: 12,345.60.
func money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
