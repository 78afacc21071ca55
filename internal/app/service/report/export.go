package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// utf8BOM makes spreadsheet software detect the encoding; without it Excel
// renders the Vietnamese headers as mojibake.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var exportHeaders = map[string][]string{
	GroupByCode:     {"Mã giảm giá", "Lượt sử dụng", "Tổng tiền giảm", "Tổng giá trị đặt phòng"},
	GroupByCustomer: {"Khách hàng", "Lượt sử dụng", "Tổng tiền giảm", "Tổng giá trị đặt phòng"},
	GroupByHotel:    {"Khách sạn", "Lượt sử dụng", "Tổng tiền giảm", "Tổng giá trị đặt phòng"},
}

// ExportCSV renders the grouped report as a CSV byte stream and suggests a
// file name. Excel/PDF rendering is a presentation concern and not handled
// here.
func (s *Service) ExportCSV(ctx context.Context, req *ReportRequest) ([]byte, string, error) {
	rows, err := s.Report(ctx, req)
	if err != nil {
		return nil, "", err
	}

	groupBy := strings.ToLower(req.GroupBy)
	if groupBy == "" {
		groupBy = GroupByCode
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeaders[groupBy]); err != nil {
		return nil, "", fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Name,
			strconv.FormatInt(r.Redemptions, 10),
			strconv.FormatFloat(r.TotalDiscount, 'f', 0, 64),
			strconv.FormatFloat(r.TotalBooking, 'f', 0, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to flush csv: %w", err)
	}

	filename := fmt.Sprintf("discount-report-%s-%s.csv", groupBy, time.Now().Format(time.DateOnly))
	return buf.Bytes(), filename, nil
}
