package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"mime"
	"strings"

	"github.com/stratton-prime/certexam-backend/internal/model"
)

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<html>
<body style="font-family: Arial, sans-serif; max-width: 720px; margin: 0 auto;">
  <h2>Certification exam result: {{if .Result.Passed}}PASSED{{else}}FAILED{{end}}</h2>
  <p><strong>{{.Result.Examinee.FullName}}</strong> ({{.Result.Examinee.Email}}{{with .Result.Examinee.HierarchicalID}}, {{.}}{{end}})</p>
  <p>Score: <strong>{{.Result.Score}}%</strong> ({{.Result.CorrectCount}}/{{.Result.TotalCount}} correct)</p>
  <p>Taken at: {{.Result.TakenAt.Format "2006-01-02 15:04 MST"}}</p>
  <p>Failed attempts so far: {{.FailureCount}}</p>
  <table border="1" cellpadding="6" cellspacing="0" style="border-collapse: collapse; width: 100%;">
    <tr><th>#</th><th>Question</th><th>Answer</th><th>Expected</th><th></th></tr>
    {{range $i, $e := .Result.AnswersLog}}
    <tr>
      <td>{{inc $i}}</td>
      <td>{{$e.QuestionText}}</td>
      <td>{{$e.UserAnswer}}{{with $e.Justification}}<br><em>{{.}}</em>{{end}}</td>
      <td>{{$e.CorrectAnswer}}</td>
      <td>{{if $e.IsCorrect}}&#10003;{{else}}&#10007;{{end}}</td>
    </tr>
    {{end}}
  </table>
</body>
</html>`))

// Recipients lists who receives a report: the examinee, their manager and the
// head-office copy. Empty and repeated addresses are dropped.
func Recipients(r model.Report, cc string) []string {
	seen := map[string]bool{}
	var out []string
	for _, addr := range []string{r.Result.Examinee.Email, r.Result.Examinee.ManagerEmail, cc} {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out
}

// RenderReport builds the result email for a report.
func RenderReport(r model.Report, cc string) (Message, error) {
	var body bytes.Buffer
	if err := reportTmpl.Execute(&body, r); err != nil {
		return Message{}, fmt.Errorf("render report: %w", err)
	}

	outcome := "FAILED"
	if r.Result.Passed {
		outcome = "PASSED"
	}
	return Message{
		To:      Recipients(r, cc),
		Subject: fmt.Sprintf("Certification exam %s: %s (%d%%)", outcome, r.Result.Examinee.FullName, r.Result.Score),
		HTML:    body.String(),
	}, nil
}

func mimeHeader(s string) string {
	return mime.QEncoding.Encode("utf-8", s)
}
