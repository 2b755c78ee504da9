// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	txns   *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(txnsPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(txnsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	cleanup := func() {
		tf.Close()
		ef.Close()
	}

	if err := tw.Write([]string{"run_id", "date", "action", "instrument", "contracts", "cash_delta", "commission", "cash_after", "shares_after"}); err != nil {
		cleanup()
		return nil, err
	}
	if err := ew.Write([]string{"run_id", "date", "cash", "stock_value", "option_value", "total"}); err != nil {
		cleanup()
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		cleanup()
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		cleanup()
		return nil, err
	}

	return &CSVJournal{tw, ew, tf, ef}, nil
}

func (j *CSVJournal) RecordTransaction(t TransactionRecord) error {
	err := j.txns.Write([]string{
		t.RunID,
		t.Date.Format(time.DateOnly),
		t.Action,
		t.Instrument,
		strconv.Itoa(t.Contracts),
		f(t.CashDelta),
		f(t.Commission),
		f(t.CashAfter),
		strconv.Itoa(t.SharesAfter),
	})
	if err != nil {
		return err
	}

	j.txns.Flush()
	return j.txns.Error()
}

func (j *CSVJournal) RecordEquity(e EquityRecord) error {
	err := j.equity.Write([]string{
		e.RunID,
		e.Date.Format(time.DateOnly),
		f(e.Cash),
		f(e.StockValue),
		f(e.OptionValue),
		f(e.Total),
	})
	if err != nil {
		return err
	}

	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.txns.Flush()
	if err := j.txns.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	if err := j.ef.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
