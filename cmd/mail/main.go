package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"github.com/qltt-vn/market-portal/backend/internal/config"
	"github.com/qltt-vn/market-portal/backend/internal/domain"
)

// Mẫu mail và tiêu đề theo từng loại thư
var mailTemplates = map[string]struct {
	File    string
	Subject string
}{
	"create_user": {
		File:    "./templates/new_account_email.html",
		Subject: "Cổng quản lý thị trường - Thông tin tài khoản",
	},
	"reset_password": {
		File:    "./templates/reset_password_otp_email.html",
		Subject: "Cổng quản lý thị trường - Đặt lại mật khẩu",
	},
	"change_email": {
		File:    "./templates/change_email_email.html",
		Subject: "Cổng quản lý thị trường - Đổi email",
	},
	"admin_reset_password": {
		File:    "./templates/admin_reset_password_email.html",
		Subject: "Cổng quản lý thị trường - Mật khẩu mới",
	},
}

func main() {
	/**********************************************
	 * Tạo logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * Nạp cấu hình
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("không nạp được cấu hình", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * Tạo client gửi mail
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("không tạo được client gửi mail", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// Thử kết nối tới server mail trước khi nhận việc
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("không kết nối được server mail", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * Kết nối RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("không kết nối được RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("không mở được channel", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		"email_queue", // tên queue
		true,          // durable
		false,         // không tự xoá khi hết consumer
		false,         // không độc quyền
		false,         // chờ RabbitMQ xác nhận
		nil,
	)
	if err != nil {
		logger.Error("không khai báo được queue", slog.String("error", err.Error()))
		return
	}

	// Bắt CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name,
		"",    // để RabbitMQ tự cấp định danh consumer
		false, // không auto ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("không nhận được message", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("nhận message", slog.String("message", string(msg.Body)))

				mailMessage := domain.MailMessage{}
				if err := json.Unmarshal(msg.Body, &mailMessage); err != nil {
					logger.Error("giải mã message thất bại", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				entry, ok := mailTemplates[mailMessage.Type]
				if !ok {
					logger.Error("loại thư không được hỗ trợ", slog.String("type", mailMessage.Type))
					_ = msg.Nack(false, false)
					continue
				}

				m := mail.NewMsg()
				if err := m.From(cfg.Email.SMTP.Username); err != nil {
					logger.Error("không đặt được người gửi", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.To(mailMessage.To); err != nil {
					logger.Error("không đặt được người nhận", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				tmpl, err := template.ParseFiles(entry.File)
				if err != nil {
					logger.Error("không đọc được mẫu thư", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.SetBodyHTMLTemplate(tmpl, mailMessage.Data); err != nil {
					logger.Error("không dựng được nội dung thư", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				m.Subject(entry.Subject)

				if err := client.DialAndSend(m); err != nil {
					logger.Error("gửi thư thất bại", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // đưa message trở lại queue
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("đang chờ message... (CTRL+C để thoát)")
	<-sigChan

	slog.Info("đang tắt mail worker...")
	cancel()
	wg.Wait()
	slog.Info("mail worker đã tắt")
}
