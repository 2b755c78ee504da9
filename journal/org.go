package journal

import (
	"bytes"
	"text/template"
	"time"
)

var runOrgFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

// OrgReport renders the run as an Org-mode heading suitable for pasting into
// a trading notebook.
func (r Run) OrgReport() (string, error) {
	t, err := template.New("run").Funcs(runOrgFuncs).Parse(runOrgTemplate)
	if err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)
	if err := t.Execute(buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const runOrgTemplate = `
* BACKTEST: Wheel {{.Ticker}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    wheel
:TICKER:      {{.Ticker}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:START_BAL:   {{printf "%.2f" .InitialCapital}}
:END_BAL:     {{printf "%.2f" .FinalEquity}}
:NET_PL:      {{printf "%.2f" .NetPL}}
:RETURN_PCT:  {{printf "%.2f" .ReturnPct}}
:CAGR:        {{printf "%.2f" .CAGR}}
:SHARPE:      {{printf "%.2f" .Sharpe}}
:MAX_DD_PCT:  {{if ne .MaxDDPct 0.0}}{{printf "%.2f" .MaxDDPct}}{{else}}(max-dd?){{end}}
:WIN_RATE:    {{printf "%.2f" .WinRate}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Strategy Parameters
| Parameter      | Value |
|----------------+-------|
| Target DTE     | {{.TargetDTE}} |
| Put Delta      | {{printf "%.2f" .PutDelta}} |
| Call Delta     | {{printf "%.2f" .CallDelta}} |
| Contracts      | {{.Contracts}} |
| Commission     | {{printf "%.2f" .Commission}} |

** Wheel Activity
| Event        | Count |
|--------------+-------|
| Puts Sold    | {{.PutsSold}} |
| Calls Sold   | {{.CallsSold}} |
| Assignments  | {{.Assignments}} |
| Called Away  | {{.CalledAway}} |
| Expired      | {{.Expired}} |

** Performance Summary
- Net P/L:          *{{printf "%.2f" .NetPL}}*
- Return:           *{{printf "%.2f" .ReturnPct}}%*
- CAGR:             *{{printf "%.2f" .CAGR}}%*
- Max Drawdown:     *{{if ne .MaxDDPct 0.0}}{{printf "%.2f" .MaxDDPct}}{{else}}(max-dd?){{end}}%*
- Win Rate:         *{{printf "%.2f" .WinRate}}%*
- Final State:      *{{.FinalState}}*
`
