package boarding

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	SymbolSize = 256

	cardWidth   = 360
	cardPadding = 20
	lineHeight  = 18
)

// SymbolPNG encodes payload as a QR symbol at error-correction level M.
func SymbolPNG(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = SymbolSize
	}
	data, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("can't encode qr symbol: %w", err)
	}
	return data, nil
}

// SymbolText draws the symbol with block characters for a terminal.
func SymbolText(payload string) (string, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("can't encode qr symbol: %w", err)
	}
	return q.ToSmallString(false), nil
}

// Caption is the text printed under the symbol on a downloaded card.
func Caption(d Draft, issuedAt time.Time) []string {
	lines := []string{fmt.Sprintf("ID %s  %s", d.EmployeeID, d.EmployeeName)}
	if d.BusRoute != "" {
		lines = append(lines, "Route "+d.BusRoute)
	}
	if d.ValidDate != "" || d.BoardingTime != "" {
		lines = append(lines, fmt.Sprintf("Valid %s %s", d.ValidDate, d.BoardingTime))
	}
	lines = append(lines, "Issued "+issuedAt.Format("2006-01-02 15:04:05"))
	return lines
}

// CardPNG composes the downloadable card: the symbol scaled onto a white canvas with the
// caption underneath.
func CardPNG(payload string, caption []string) ([]byte, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("can't encode qr symbol: %w", err)
	}
	symbol := q.Image(SymbolSize)

	side := cardWidth - 2*cardPadding
	height := cardPadding + side + cardPadding + len(caption)*lineHeight + cardPadding
	canvas := image.NewRGBA(image.Rect(0, 0, cardWidth, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	target := image.Rect(cardPadding, cardPadding, cardPadding+side, cardPadding+side)
	draw.NearestNeighbor.Scale(canvas, target, symbol, symbol.Bounds(), draw.Over, nil)

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	y := target.Max.Y + cardPadding
	for _, line := range caption {
		y += lineHeight
		drawer.Dot = fixed.P(cardPadding, y)
		drawer.DrawString(line)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("can't encode card png: %w", err)
	}
	return buf.Bytes(), nil
}
