package directory

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetCustomer    = "Customer"
	SheetCard        = "Card"
	SheetTransaction = "Transaction"
)

// LoadWorkbook reads the customer workbook and returns a ready directory.
// All three sheets are joined in memory: cards and transactions attach to
// their owning customer via the account number.
func LoadWorkbook(path string, logger *slog.Logger) (*Directory, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Warn("closing workbook", "error", cerr)
		}
	}()

	customers, accountOwner, err := loadCustomerSheet(f)
	if err != nil {
		return nil, err
	}
	if err := loadCardSheet(f, customers, accountOwner); err != nil {
		return nil, err
	}
	if err := loadTransactionSheet(f, customers, accountOwner); err != nil {
		return nil, err
	}

	joined := make([]Customer, 0, len(customers))
	for _, c := range customers {
		joined = append(joined, *c)
	}

	logger.Info("customer workbook loaded",
		"path", path,
		"customers", len(joined))
	return New(joined, logger), nil
}

// sheetRecords reads a sheet and maps each data row by its header name.
func sheetRecords(f *excelize.File, sheet string) ([]map[string]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	headers := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = strings.TrimSpace(row[i])
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func loadCustomerSheet(f *excelize.File) (map[int]*Customer, map[string]int, error) {
	records, err := sheetRecords(f, SheetCustomer)
	if err != nil {
		return nil, nil, err
	}

	customers := make(map[int]*Customer)
	accountOwner := make(map[string]int)

	for _, rec := range records {
		id, err := strconv.Atoi(rec["ID"])
		if err != nil {
			return nil, nil, fmt.Errorf("customer sheet: invalid ID %q: %w", rec["ID"], err)
		}
		accNo := rec["Account_No"]
		if accNo == "" {
			return nil, nil, fmt.Errorf("customer sheet: missing Account_No for ID %d", id)
		}

		account := Account{
			Number:             accNo,
			Name:               rec["Account_Name"],
			Currency:           rec["Currency"],
			AccountType:        rec["Account_Type"],
			ProductType:        rec["Product_Type"],
			ProductDescription: rec["Product_Description"],
			Balance:            parseAmount(rec["Current_Balance"]),
			OpenDate:           normalizeDate(rec["Account_Open_Date"]),
		}

		c, ok := customers[id]
		if !ok {
			c = &Customer{
				ID:           id,
				Name:         rec["Account_Name"],
				Transactions: make(map[string][]Transaction),
			}
			customers[id] = c
		}
		c.Accounts = append(c.Accounts, account)
		accountOwner[accNo] = id
	}

	return customers, accountOwner, nil
}

func loadCardSheet(f *excelize.File, customers map[int]*Customer, accountOwner map[string]int) error {
	records, err := sheetRecords(f, SheetCard)
	if err != nil {
		return err
	}

	for _, rec := range records {
		accNo := rec["Account_No"]
		id, ok := accountOwner[accNo]
		if !ok {
			// Card referencing an unknown account is dropped, matching the
			// permissive join of the workbook format.
			continue
		}
		customers[id].Cards = append(customers[id].Cards, Card{
			AccountNumber:  accNo,
			Issuer:         rec["Card_Issuer"],
			Type:           rec["Card_Type"],
			ActivationDate: normalizeDate(rec["Card_Activation_Date"]),
			Status:         rec["Status"],
		})
	}
	return nil
}

func loadTransactionSheet(f *excelize.File, customers map[int]*Customer, accountOwner map[string]int) error {
	records, err := sheetRecords(f, SheetTransaction)
	if err != nil {
		return err
	}

	for _, rec := range records {
		accNo := rec["Account_No"]
		id, ok := accountOwner[accNo]
		if !ok {
			continue
		}
		c := customers[id]
		c.Transactions[accNo] = append(c.Transactions[accNo], Transaction{
			AccountNumber:   accNo,
			Date:            parseDate(rec["Transaction_Date"]),
			Type:            rec["Transaction_Type"],
			Amount:          parseAmount(rec["Transaction_Amount"]),
			Destination:     rec["Destination_Account"],
			Narration:       rec["Narration"],
			DestinationBank: rec["Destination_Account_Bank"],
			Status:          rec["Transaction_Status"],
			FailureReason:   rec["Failure_Reason"],
		})
	}
	return nil
}

// parseAmount parses a numeric cell, tolerating thousands separators.
// Returns 0 for empty or malformed values.
func parseAmount(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// dateLayouts are the cell formats observed in the workbook.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01-02-06",
	"1/2/06 15:04",
	"1/2/2006",
}

// parseDate parses a date cell; zero time when unparseable.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// normalizeDate renders a date cell as YYYY-MM-DD, passing the raw value
// through when it cannot be parsed.
func normalizeDate(s string) string {
	t := parseDate(s)
	if t.IsZero() {
		return strings.TrimSpace(s)
	}
	return t.Format("2006-01-02")
}
