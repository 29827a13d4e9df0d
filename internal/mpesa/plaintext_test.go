package mpesa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain passes through", "Ksh500 paid to 3566188", "Ksh500 paid to 3566188"},
		{"keeps inner whitespace of plain text", "a  b", "a  b"},
		{"strips tags", "<div><p>Ksh500</p> <b>paid</b> to 3566188</div>", "Ksh500 paid to 3566188"},
		{"drops scripts", "<p>Ksh500 paid to 3566188</p><script>alert(1)</script>", "Ksh500 paid to 3566188"},
		{"collapses whitespace", "<p>Ksh500\n\n   paid   to\t3566188</p>", "Ksh500 paid to 3566188"},
		{"heart is not markup", "Thanks <3 Ksh500 paid to 3566188 >> done", "Thanks <3 Ksh500 paid to 3566188 >> done"},
		{"comparison is not markup", "balance < Ksh100 and fee > 0", "balance < Ksh100 and fee > 0"},
		{"closing tag alone", "Ksh500 paid</b> to 3566188", "Ksh500 paid to 3566188"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestPlainText_FeedsDetector(t *testing.T) {
	html := `<span class="sms">Confirmed. Ksh<b>250.00</b> sent to Till Number <a href="#">3566188</a></span>`
	info, ok := newTestDetector("3566188").ExtractPaymentInfo(PlainText(html))
	assert.True(t, ok)
	assert.Equal(t, "250", info.Amount.String())
}
