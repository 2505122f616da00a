package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhoneNumber(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{"english label", "Phone: 6281234567890", "6281234567890", true},
		{"indonesian label", "PEMBAYARAN\nTelepon: 6281234567890\n", "6281234567890", true},
		{"case and whitespace", "  phone   :   0812 345", "0812", true},
		{"leading plus", "Phone: +6281234", "6281234", true},
		{"first line wins", "Phone: 111\nPhone: 222", "111", true},
		{"first label in text wins", "Telepon: 111\nPhone: 222", "111", true},
		{"emoji before label", "📞 Telepon: 6281234567890", "6281234567890", true},
		{"numbered list", "1. Phone: 6281234567890", "6281234567890", true},
		{"label mid sentence", "Pembayaran diterima. Phone: 6281234567890", "6281234567890", true},
		{"bullet before label", "- WhatsApp: 6281234567890", "6281234567890", true},
		{"label inside a word", "Headphone: 6281234567890", "", false},
		{"too many digits", "Phone: " + strings.Repeat("1", MaxPhoneDigits+1), "", false},
		{"too long run skipped", "Phone: " + strings.Repeat("1", 40) + "\nTelepon: 628", "628", true},
		{"max digits", "Phone: " + strings.Repeat("9", MaxPhoneDigits), strings.Repeat("9", MaxPhoneDigits), true},
		{"missing label", "Name: Budi", "", false},
		{"label without digits", "Phone: unknown", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PhoneNumber(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccessCode(t *testing.T) {
	code, ok := AccessCode("Name: Budi\nAccess Code: 4455\n")
	require.True(t, ok)
	assert.Equal(t, "4455", code)

	code, ok = AccessCode("kode akses: 9911")
	require.True(t, ok)
	assert.Equal(t, "9911", code)

	_, ok = AccessCode("Phone: 628")
	assert.False(t, ok)

	code, ok = AccessCode("✅ Kode Akses: 1234")
	require.True(t, ok)
	assert.Equal(t, "1234", code)

	_, ok = AccessCode("Access Code: " + strings.Repeat("7", MaxAccessCodeDigits+1))
	assert.False(t, ok, "overlong codes are ignored")
}

func TestCustomerName(t *testing.T) {
	name, ok := CustomerName("Nama:   Budi Santoso  \nTelepon: 628")
	require.True(t, ok)
	assert.Equal(t, "Budi Santoso", name)

	name, ok = CustomerName("NAME: Ani\r\nPhone: 1")
	require.True(t, ok)
	assert.Equal(t, "Ani", name)

	_, ok = CustomerName("Name:   \nPhone: 628")
	assert.False(t, ok, "blank name is treated as absent")

	_, ok = CustomerName("Phone: 628")
	assert.False(t, ok)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"prefixed label", "Customer Name: Budi", "Budi"},
		{"emoji before label", "👤 Nama: Budi", "Budi"},
		{"value stops at line end", "Pembayaran. Nama: Budi\nTelepon: 628", "Budi"},
		{"first label in text wins", "Nama: Sari\nName: Budi", "Sari"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CustomerName(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok = CustomerName("Username: budi")
	assert.False(t, ok, "label must start at a word boundary")

	long, ok := CustomerName("Nama: " + strings.Repeat("é", 300))
	require.True(t, ok)
	assert.Equal(t, MaxNameLength, utf8.RuneCountInString(long))
}

func TestCategoryVariants(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		contentType ContentType
		want        string
		found       bool
	}{
		{"category prefix", "Category Audio: Relax", Audio, "Relax", true},
		{"kategori prefix", "Kategori Audio: Relax, Focus", Audio, "Relax, Focus", true},
		{"type then category", "Video Category: Yoga", Video, "Yoga", true},
		{"bare type", "Document: Finance", Document, "Finance", true},
		{"indonesian type", "Kategori Dokumen: Pajak", Document, "Pajak", true},
		{"prefix preferred over bare", "Audio: Later\nCategory Audio: First", Audio, "First", true},
		{"blank value stops search", "Category Audio:   \nAudio: Relax", Audio, "", false},
		{"cloud label is not standard", "Kategori Audio Cloud: Relax", Audio, "", false},
		{"bullet before label", "• Kategori Audio: Relax", Audio, "Relax", true},
		{"absent", "Phone: 628", Video, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Category(tt.text, tt.contentType)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCloudCategory(t *testing.T) {
	got, ok := CloudCategory("Kategori Audio Cloud: Podcast", Audio)
	require.True(t, ok)
	assert.Equal(t, "Podcast", got)

	got, ok = CloudCategory("File Cloud Category: Backup, Archive", File)
	require.True(t, ok)
	assert.Equal(t, "Backup, Archive", got)

	got, ok = CloudCategory("dokumen cloud: Legal", Document)
	require.True(t, ok)
	assert.Equal(t, "Legal", got)

	_, ok = CloudCategory("Kategori Audio: Relax", Audio)
	assert.False(t, ok)
}

func TestParseCategoryList(t *testing.T) {
	assert.Equal(t, []string{"Finance", "Health", "Wellness"}, ParseCategoryList("Finance, , Health,Wellness"))
	assert.Equal(t, []string{"Relax"}, ParseCategoryList("  Relax  "))
	assert.Empty(t, ParseCategoryList(""))
	assert.Empty(t, ParseCategoryList(" , ,"))
}

func TestExtract(t *testing.T) {
	text := "PEMBAYARAN\n" +
		"Nama: Budi\n" +
		"Telepon: 6281234567890\n" +
		"Kode Akses: 7788\n" +
		"Kategori Audio: Relax, Sleep\n" +
		"Video Category: Yoga\n" +
		"Kategori Audio Cloud: Podcast\n" +
		"File Cloud: \n"

	fields := Extract(text)
	assert.Equal(t, "6281234567890", fields.Phone)
	assert.Equal(t, "Budi", fields.Name)
	assert.Equal(t, "7788", fields.AccessCode)
	assert.Equal(t, map[Axis][]string{
		AxisAudio:      {"Relax", "Sleep"},
		AxisVideo:      {"Yoga"},
		AxisAudioCloud: {"Podcast"},
	}, fields.Categories)
}

func TestAxis(t *testing.T) {
	assert.Len(t, Axes, 6)
	for _, axis := range Axes {
		assert.True(t, axis.Valid(), axis)
	}
	assert.False(t, Axis("photo").Valid())
	assert.True(t, AxisFileCloud.Cloud())
	assert.Equal(t, File, AxisFileCloud.ContentType())
	assert.False(t, AxisDocument.Cloud())
}
