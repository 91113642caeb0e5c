package service

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/sequence"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVHeader is the interchange header row.
var CSVHeader = []string{
	"ID", "PR_No", "PO_No", "OBR_No", "DV_No",
	"Title", "Date", "Department", "Purpose", "Status",
	"Supplier1_Name", "Supplier1_Address",
	"Supplier2_Name", "Supplier2_Address",
	"Supplier3_Name", "Supplier3_Address",
	"Total_Amount", "Items_JSON", "Created_At",
}

// MinImportFields is the fewest fields a data row may carry.
const MinImportFields = 17

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// ErrNoData is returned when there is nothing to export.
var ErrNoData = errors.New("no purchases to export")

// ExportCSV renders purchases in the interchange format with every field
// quoted.
func ExportCSV(purchases []entity.Purchase) ([]byte, error) {
	if len(purchases) == 0 {
		return nil, ErrNoData
	}
	var buf bytes.Buffer
	buf.WriteString(strings.Join(CSVHeader, ","))
	buf.WriteByte('\n')
	for _, p := range purchases {
		row, err := csvRow(p)
		if err != nil {
			return nil, err
		}
		writeQuoted(&buf, row)
	}
	return buf.Bytes(), nil
}

func csvRow(p entity.Purchase) ([]string, error) {
	items := p.Items
	if items == nil {
		items = []entity.Item{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return []string{
		p.ID, p.PRNo, p.PONo, p.OBRNo, p.DVNo,
		p.Title, p.Date, p.Department, p.Purpose, p.Status,
		p.Supplier1.Name, p.Supplier1.Address,
		p.Supplier2.Name, p.Supplier2.Address,
		p.Supplier3.Name, p.Supplier3.Address,
		strconv.FormatFloat(p.TotalAmount, 'f', -1, 64),
		string(itemsJSON),
		p.CreatedAt.UTC().Format(isoMillis),
	}, nil
}

// writeQuoted writes one row, quoting every field and doubling embedded
// quotes. csv.Writer only quotes when it has to. Line breaks inside a field
// become spaces so every record stays on one line.
func writeQuoted(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(lineBreaks.Replace(f), `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// ImportResult is the outcome of parsing an interchange file.
type ImportResult struct {
	Purchases []entity.Purchase
	Skipped   int
}

// ParseImport reads interchange text one line per record. Rows with too few
// fields are skipped and counted; a quote left open ends with its line, so
// a broken row never swallows the next one. A bad items document yields no
// items. Missing document numbers are issued after the highest ones found
// in existing and in the file itself.
func ParseImport(r io.Reader, existing []entity.Purchase) *ImportResult {
	return parseImport(r, sequence.Recompute(existing, entity.SeriesPrefixes...), time.Now())
}

func parseImport(r io.Reader, base sequence.Counters, now time.Time) *ImportResult {
	purchases, skipped := readImportRows(r, now)
	backfillIdentifiers(purchases, base, now.Format("2006"))
	return &ImportResult{Purchases: purchases, Skipped: skipped}
}

// readImportRows decodes data rows without touching document numbers. The
// first non-blank line is the header.
func readImportRows(r io.Reader, now time.Time) ([]entity.Purchase, int) {
	br := bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	purchases := []entity.Purchase{}
	skipped := 0
	header := true
	for {
		line, err := br.ReadString('\n')
		if line = strings.TrimRight(line, "\r\n"); strings.TrimSpace(line) != "" {
			record, ok := splitLine(line)
			switch {
			case header:
				header = false
			case !ok:
				skipped++
			case blankRecord(record):
			case len(record) < MinImportFields:
				skipped++
			default:
				purchases = append(purchases, purchaseFromRecord(record, now))
			}
		}
		if err != nil {
			break
		}
	}
	return purchases, skipped
}

func splitLine(line string) ([]string, bool) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	record, err := reader.Read()
	if err != nil {
		return nil, false
	}
	return record, true
}

// backfillIdentifiers fills empty document numbers in place, continuing
// from base and from whatever the list already carries.
func backfillIdentifiers(list []entity.Purchase, base sequence.Counters, year string) {
	counters := sequence.Merge(base, sequence.Recompute(list, entity.SeriesPrefixes...))
	for i := range list {
		p := &list[i]
		fields := []*string{&p.ID, &p.PRNo, &p.PONo, &p.OBRNo, &p.DVNo}
		for j, prefix := range entity.SeriesPrefixes {
			if *fields[j] == "" {
				*fields[j], counters = sequence.Next(counters, prefix, year)
			}
		}
	}
}

func purchaseFromRecord(v []string, now time.Time) entity.Purchase {
	field := func(i int) string {
		if i < len(v) {
			return strings.TrimSpace(v[i])
		}
		return ""
	}
	status := field(9)
	if status == "" {
		status = entity.StatusPending
	}
	p := entity.Purchase{
		ID:         field(0),
		PRNo:       field(1),
		PONo:       field(2),
		OBRNo:      field(3),
		DVNo:       field(4),
		Title:      field(5),
		Date:       field(6),
		Department: field(7),
		Purpose:    field(8),
		Status:     status,
		Priority:   entity.PriorityNormal,
		Supplier1:  entity.Supplier{Name: field(10), Address: field(11)},
		Supplier2:  entity.Supplier{Name: field(12), Address: field(13)},
		Supplier3:  entity.Supplier{Name: field(14), Address: field(15)},
		Items:      parseItems(field(17)),
		CreatedAt:  parseCreatedAt(field(18), now),
	}
	p.Recalculate()
	ensureSlices(&p)
	return p
}

func parseItems(raw string) []entity.Item {
	if raw == "" {
		return []entity.Item{}
	}
	var items []entity.Item
	if err := json.Unmarshal([]byte(raw), &items); err == nil {
		return items
	}
	// files written by hand sometimes keep the doubled quotes
	if err := json.Unmarshal([]byte(strings.ReplaceAll(raw, `""`, `"`)), &items); err == nil {
		return items
	}
	return []entity.Item{}
}

func parseCreatedAt(raw string, now time.Time) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return now
}

func blankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// MergeOverwriteByID combines existing and imported purchases keyed by id.
// An imported record replaces the existing one with the same id in place;
// new ids follow in input order. Records without an id are dropped.
func MergeOverwriteByID(existing, imported []entity.Purchase) []entity.Purchase {
	index := make(map[string]int, len(existing)+len(imported))
	out := make([]entity.Purchase, 0, len(existing)+len(imported))
	put := func(p entity.Purchase) {
		if p.ID == "" {
			return
		}
		if i, ok := index[p.ID]; ok {
			out[i] = p
			return
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	for _, p := range existing {
		put(p)
	}
	for _, p := range imported {
		put(p)
	}
	return out
}
