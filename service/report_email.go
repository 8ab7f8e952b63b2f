package service

import (
	"fmt"
	"strings"

	"officeexpense/config"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendMonthlyReport 发送月度费用报告邮件
func (s *EmailService) SendMonthlyReport(toEmail string, month, year int, summary *WalletSummary, breakdown []CategoryBreakdown) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用，请配置 EXPENSE_EMAIL_ENABLED=true")
	}

	subject := fmt.Sprintf("【办公费用管理系统】%d 年 %d 月费用报告", year, month)
	body := s.generateMonthlyReportBody(month, year, summary, breakdown)

	return s.sendEmail(toEmail, subject, body)
}

// generateMonthlyReportBody 生成月度报告邮件内容
func (s *EmailService) generateMonthlyReportBody(month, year int, summary *WalletSummary, breakdown []CategoryBreakdown) string {
	var rows strings.Builder
	for _, item := range breakdown {
		rows.WriteString(fmt.Sprintf(`
            <tr>
                <td><span class="dot" style="background:%s;"></span>%s</td>
                <td class="num">¥%.2f</td>
                <td class="num">%d</td>
                <td class="num">%.1f%%</td>
            </tr>`, item.Color, item.Name, item.TotalAmount, item.ExpenseCount, item.Percentage))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #2563eb, #1d4ed8); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .stats { display: block; margin: 20px 0; }
        .stat { background: #f8fafc; border-radius: 8px; padding: 16px 20px; margin-bottom: 10px; }
        .stat .label { color: #6c757d; font-size: 13px; }
        .stat .value { color: #1d4ed8; font-size: 22px; font-weight: bold; }
        table { width: 100%%; border-collapse: collapse; margin: 20px 0; }
        th { text-align: left; color: #6c757d; font-size: 13px; padding: 8px; border-bottom: 2px solid #e5e7eb; }
        td { padding: 8px; border-bottom: 1px solid #f1f5f9; color: #333; font-size: 14px; }
        td.num { text-align: right; }
        .dot { display: inline-block; width: 10px; height: 10px; border-radius: 50%%; margin-right: 8px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🧾 办公费用管理系统</h1>
        </div>
        <div class="content">
            <p>%d 年 %d 月费用汇总如下：</p>
            <div class="stats">
                <div class="stat"><div class="label">本月支出</div><div class="value">¥%.2f</div></div>
                <div class="stat"><div class="label">支出笔数</div><div class="value">%d</div></div>
                <div class="stat"><div class="label">经费池余额</div><div class="value">¥%.2f</div></div>
                <div class="stat"><div class="label">经费使用率</div><div class="value">%.1f%%</div></div>
            </div>
            <table>
                <tr><th>类别</th><th style="text-align:right;">金额</th><th style="text-align:right;">笔数</th><th style="text-align:right;">占比</th></tr>%s
            </table>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
            <p>© 办公费用管理系统</p>
        </div>
    </div>
</body>
</html>
`, year, month, summary.TotalExpenses, summary.ExpenseCount, summary.RemainingAmount, summary.PercentageUsed, rows.String())
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}

// SendTestEmail 发送测试邮件
func (s *EmailService) SendTestEmail(toEmail string) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用")
	}

	subject := "【办公费用管理系统】邮件配置测试"
	body := `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>✅ 邮件配置成功</h2>
    <p>如果您收到这封邮件，说明邮件服务配置正确。</p>
    <p style="color: #666;">—— 办公费用管理系统</p>
</body>
</html>
`
	return s.sendEmail(toEmail, subject, body)
}
