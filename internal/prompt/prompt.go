package prompt

import (
	"fmt"
	"strings"

	"github.com/godilite/remark-server/internal/remark"
)

const (
	DefaultSubject = "Khoa học"
	DefaultLesson  = "Chủ đề"
)

// Request carries what the generation prompt needs to know about a roster.
type Request struct {
	Subject      string
	Lesson       string
	Distribution remark.Distribution
	// Context is free text pulled from evidence documents.
	Context string
}

// Build renders the remark generation prompt. The output format section
// mirrors what remark.Parse understands, one header per band.
func Build(req Request) string {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = DefaultSubject
	}
	lesson := strings.TrimSpace(req.Lesson)
	if lesson == "" {
		lesson = DefaultLesson
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Bạn là giáo viên tiểu học. Viết nhận xét học tập môn %s, bài %s.\n\n", subject, lesson)

	b.WriteString("QUY TẮC:\n")
	b.WriteString("- Mỗi nhận xét dùng cho 1 học sinh.\n")
	b.WriteString("- Không dùng từ: Em, Con, Bạn.\n")
	b.WriteString("- Không viết in hoa toàn bộ.\n")
	b.WriteString("- Độ dài 2–3 câu, đúng tinh thần Thông tư 27.\n")
	b.WriteString("- Nhận xét PHÙ HỢP VỚI ĐIỂM SỐ.\n\n")

	b.WriteString("YÊU CẦU SỐ LƯỢNG:\n")
	b.WriteString(QuantityLines(req.Distribution))
	b.WriteString("\n")

	if ctx := strings.TrimSpace(req.Context); ctx != "" {
		b.WriteString("NGỮ CẢNH BÀI HỌC:\n")
		b.WriteString(ctx)
		b.WriteString("\n\n")
	}

	b.WriteString("ĐỊNH DẠNG TRẢ VỀ:\n")
	b.WriteString(FormatSection())
	return b.String()
}

// QuantityLines renders one "- N nhận xét cho mức điểm B" line per band.
func QuantityLines(d remark.Distribution) string {
	var b strings.Builder
	for _, c := range d.Counts {
		label, ok := c.Band.Label()
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %d nhận xét cho mức điểm %s\n", c.Count, label)
	}
	return b.String()
}

// FormatSection lists every band header followed by a placeholder bullet.
func FormatSection() string {
	var b strings.Builder
	for _, band := range remark.Bands() {
		label, _ := band.Label()
		fmt.Fprintf(&b, "%s %s %s\n- ...\n", remark.HeaderMarker, remark.HeaderPhrase, label)
	}
	return b.String()
}
