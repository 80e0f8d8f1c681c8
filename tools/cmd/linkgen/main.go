// tools/cmd/linkgen/main.go
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/example/payment-portal/internal/session"
)

// input columns, in order
var columns = []string{"amount", "currency", "first_name", "last_name", "email", "entity_id", "payment_number"}

func main() {
	in := flag.String("in", "payers.csv", "CSV of payers with a header row")
	out := flag.String("out", "links.csv", "output CSV of links")
	base := flag.String("base", "https://pay.example.com/", "payment page URL")
	maxNum := flag.Int("max-payment-number", session.DefaultMaxPaymentNumber, "highest accepted payment number")
	flag.Parse()

	src, err := os.Open(*in)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	dst, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	defer dst.Close()

	n, bad, err := generate(csv.NewReader(src), csv.NewWriter(dst), *base, *maxNum)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("generated %s (%d links, %d with errors)", *out, n, bad)
}

func generate(r *csv.Reader, w *csv.Writer, base string, maxNum int) (int, int, error) {
	defer w.Flush()

	if _, err := r.Read(); err != nil {
		return 0, 0, fmt.Errorf("read header: %w", err)
	}
	if err := w.Write([]string{"link", "errors"}); err != nil {
		return 0, 0, err
	}

	n, bad := 0, 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, bad, fmt.Errorf("row %d: %w", n+2, err)
		}

		link, errs := buildLink(base, row, maxNum)
		if len(errs) > 0 {
			bad++
		}
		if err := w.Write([]string{link, strings.Join(errs, "; ")}); err != nil {
			return n, bad, err
		}
		n++
	}
	return n, bad, w.Error()
}

// buildLink turns one payer row into a page link and reports the
// configuration errors the page would show for it.
func buildLink(base string, row []string, maxNum int) (string, []string) {
	field := func(i int) *string {
		if i >= len(row) || strings.TrimSpace(row[i]) == "" {
			return nil
		}
		v := strings.TrimSpace(row[i])
		return &v
	}
	p := session.Params{
		Amount:        field(0),
		Currency:      field(1),
		FirstName:     field(2),
		LastName:      field(3),
		Email:         field(4),
		EntityID:      field(5),
		PaymentNumber: field(6),
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + p.Values().Encode(), session.Validate(p, maxNum)
}
