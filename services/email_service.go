package services

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"

	"sitetrack/models"

	"golang.org/x/net/html"
)

// convertHTMLToText converts HTML content to plain text for email sending
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tr":
				text.WriteString("\n")
			case "li":
				text.WriteString("- ")
			case "td", "th":
				text.WriteString(" | ")
			}
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}

	extractText(doc)

	result := text.String()
	result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	result = strings.TrimSpace(result)

	return result
}

// ProjectLister is the slice of the project store the mailer needs.
type ProjectLister interface {
	List(ctx context.Context) ([]models.Project, error)
}

// EmailService sends operational mail. SMTP settings come from the
// environment; when SMTP_HOST is unset sending is a logged no-op so local
// runs never try to reach a mail server.
type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewEmailService() *EmailService {
	return &EmailService{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}
}

// SendLowStockDigest mails one digest covering every project with materials
// in the critical or warning buckets. Returns the number of flagged
// materials; zero means no mail was sent.
func (es *EmailService) SendLowStockDigest(ctx context.Context, store ProjectLister, to string) (int, error) {
	projects, err := store.List(ctx)
	if err != nil {
		return 0, err
	}

	var body strings.Builder
	body.WriteString("<h2>Low Stock Digest</h2>")

	flagged := 0
	for _, p := range projects {
		var rows []string
		for _, m := range p.Materials {
			status := StockStatus(m.Quantity, m.ReorderLevel)
			if status == StockHealthy {
				continue
			}
			flagged++
			rows = append(rows, fmt.Sprintf(
				"<tr><td>%s</td><td>%.2f %s</td><td>%.2f</td><td>%s</td></tr>",
				m.Name, m.Quantity, m.Unit, m.ReorderLevel, status))
		}
		if len(rows) == 0 {
			continue
		}
		body.WriteString(fmt.Sprintf("<h3>%s</h3>", p.Name))
		body.WriteString("<table><tr><th>Material</th><th>Quantity</th><th>Reorder Level</th><th>Status</th></tr>")
		body.WriteString(strings.Join(rows, ""))
		body.WriteString("</table>")
	}

	if flagged == 0 {
		return 0, nil
	}

	subject := fmt.Sprintf("Low stock alert: %d materials below reorder level", flagged)
	if err := es.sendEmail(to, subject, body.String()); err != nil {
		return flagged, err
	}

	return flagged, nil
}

// sendEmail sends a multipart-free plain email over SMTP. HTML bodies are
// converted to text so site office mail clients always render something.
func (es *EmailService) sendEmail(to, subject, htmlBody string) error {
	if es.host == "" {
		log.Printf("SMTP not configured, skipping email %q to %s", subject, to)
		return nil
	}

	port := es.port
	if port == "" {
		port = "587"
	}

	auth := smtp.PlainAuth("", es.username, es.password, es.host)

	headers := []string{
		"From: " + es.from,
		"To: " + to,
		"Subject: " + subject,
		"",
		convertHTMLToText(htmlBody),
	}
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	return smtp.SendMail(es.host+":"+port, auth, es.from, []string{to}, msg)
}
