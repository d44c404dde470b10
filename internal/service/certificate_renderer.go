package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mandolyte/mdtopdf"
)

//go:generate mockgen -source=certificate_renderer.go -destination=../mocks/service/mock_certificate_renderer.go -package=mock_service

// CertificateDocument 证书上展示的内容
type CertificateDocument struct {
	SerialNumber     string
	TraineeName      string
	ProgramName      string
	Organization     string
	CompletedModules int
	AverageScore     float64
	IssuedAt         time.Time
}

// CertificateRenderer 生成证书文件，返回本地路径，调用方负责删除
type CertificateRenderer interface {
	Render(ctx context.Context, doc CertificateDocument) (string, error)
}

// CertificateMarkdown 证书正文
func CertificateMarkdown(doc CertificateDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Certificate of Completion\n\n")
	fmt.Fprintf(&b, "This certifies that\n\n")
	fmt.Fprintf(&b, "## %s\n\n", doc.TraineeName)
	fmt.Fprintf(&b, "has completed all %d modules of **%s**", doc.CompletedModules, doc.ProgramName)
	fmt.Fprintf(&b, " with an average assessment score of **%.1f**.\n\n", doc.AverageScore)
	fmt.Fprintf(&b, "---\n\n")
	fmt.Fprintf(&b, "Issued by %s on %s\n\n", doc.Organization, doc.IssuedAt.Format("January 2, 2006"))
	fmt.Fprintf(&b, "Serial number: `%s`\n", doc.SerialNumber)
	return b.String()
}

// PDFCertificateRenderer markdown 转 PDF
type PDFCertificateRenderer struct {
	WorkDir string
}

func NewPDFCertificateRenderer(workDir string) *PDFCertificateRenderer {
	return &PDFCertificateRenderer{WorkDir: workDir}
}

func (r *PDFCertificateRenderer) Render(ctx context.Context, doc CertificateDocument) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(r.WorkDir, 0755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}

	pdfPath := filepath.Join(r.WorkDir, "certificate-"+doc.SerialNumber+".pdf")
	renderer := mdtopdf.NewPdfRenderer("L", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process([]byte(CertificateMarkdown(doc))); err != nil {
		os.Remove(pdfPath)
		return "", fmt.Errorf("render certificate pdf: %w", err)
	}
	return pdfPath, nil
}
