package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"github.com/phenrril/catalogseed/internal/domain"
)

const (
	ProductsSheet = "Products"
	ReviewsSheet  = "Reviews"
)

var (
	productHeader = []any{"Category", "Name", "Price", "Stock", "Description", "Reviews", "Avg rating", "Options", "Image"}
	reviewHeader  = []any{"Product", "User", "Email", "Title", "Content", "Points"}
)

// Export writes a generated batch as a workbook with a Products and a
// Reviews sheet.
func Export(w io.Writer, category string, products []domain.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ProductsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(ReviewsSheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	for _, sheet := range []string{ProductsSheet, ReviewsSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return err
		}
	}

	if err := f.SetSheetRow(ProductsSheet, "A1", &productHeader); err != nil {
		return err
	}
	if err := f.SetSheetRow(ReviewsSheet, "A1", &reviewHeader); err != nil {
		return err
	}

	reviewRow := 2
	for i, p := range products {
		optionIDs := make([]string, 0, len(p.Options))
		for _, o := range p.Options {
			optionIDs = append(optionIDs, o.ID)
		}
		hasImage := "no"
		if p.Image != nil {
			hasImage = "yes"
		}
		row := []any{
			category,
			p.Name,
			p.Price,
			p.Stock,
			plainText(p.Description),
			len(p.ProductReviews),
			fmt.Sprintf("%.1f", p.AverageRating()),
			strings.Join(optionIDs, ", "),
			hasImage,
		}
		if err := f.SetSheetRow(ProductsSheet, cell(1, i+2), &row); err != nil {
			return err
		}

		for _, r := range p.ProductReviews {
			rr := []any{p.Name, r.ExternalUser, r.ExternalEmail, r.Title, r.Content, r.Points}
			if err := f.SetSheetRow(ReviewsSheet, cell(1, reviewRow), &rr); err != nil {
				return err
			}
			reviewRow++
		}
	}

	_ = f.SetColWidth(ProductsSheet, "B", "B", 32)
	_ = f.SetColWidth(ProductsSheet, "E", "E", 80)
	_ = f.SetColWidth(ReviewsSheet, "E", "E", 80)

	_, err = f.WriteTo(w)
	return err
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// Descriptions are HTML; the sheet gets the visible text only.
func plainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
