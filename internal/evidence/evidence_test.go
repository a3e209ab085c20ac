package evidence

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDocx(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestLoad(t *testing.T) {
	t.Run("docx paragraphs", func(t *testing.T) {
		data := makeDocx(t, `<w:p><w:r><w:t>Bài 12:</w:t></w:r><w:r><w:t xml:space="preserve"> Sự nảy mầm</w:t></w:r></w:p><w:p><w:r><w:t>Quan sát hạt đậu</w:t></w:r></w:p>`)

		ev, err := Load("Bai12.DOCX", data)

		require.NoError(t, err)
		assert.Equal(t, "Bài 12: Sự nảy mầm\nQuan sát hạt đậu", ev.Text)
		assert.Empty(t, ev.Attachments)
	})

	t.Run("paragraph inside a text box keeps the outer text", func(t *testing.T) {
		data := makeDocx(t, `<w:p><w:r><w:t xml:space="preserve">Trước </w:t></w:r>`+
			`<w:r><w:pict><w:txbxContent><w:p><w:r><w:t>Hộp</w:t></w:r></w:p></w:txbxContent></w:pict></w:r>`+
			`<w:r><w:t>sau</w:t></w:r></w:p>`)

		ev, err := Load("box.docx", data)

		require.NoError(t, err)
		assert.Equal(t, "Hộp\nTrước sau", ev.Text)
	})

	t.Run("broken docx", func(t *testing.T) {
		_, err := Load("x.docx", []byte("not a zip"))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("images and pdf become attachments", func(t *testing.T) {
		for name, mt := range map[string]string{"a.png": "image/png", "b.jpg": "image/jpeg", "c.pdf": "application/pdf"} {
			ev, err := Load(name, []byte{1, 2, 3})
			require.NoError(t, err)
			require.Len(t, ev.Attachments, 1)
			assert.Equal(t, mt, ev.Attachments[0].MIMEType)
			assert.Equal(t, name, ev.Attachments[0].Name)
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := Load("notes.txt", []byte("hi"))
		assert.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestMerge(t *testing.T) {
	ev := Merge(
		Evidence{Text: "first"},
		Evidence{Attachments: []Attachment{{Name: "a.png"}}},
		Evidence{Text: "  "},
		Evidence{Text: "second"},
	)

	assert.Equal(t, "first\nsecond", ev.Text)
	assert.Len(t, ev.Attachments, 1)
}
