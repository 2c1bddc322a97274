package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glowcast/glowcast/config"
	"github.com/glowcast/glowcast/pkg/mailer"
)

// mail_worker drains the mail queue and delivers through Mailgun. Currently
// the only templated job is the password-reset link.
func main() {
	cfg := config.Load()
	if !cfg.MailSendEnabled {
		log.Println("MAIL_SEND_ENABLED=false; mail worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQMailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	if _, err := ch.QueueDeclare(cfg.RabbitMQMailQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQMailQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var job mailer.EmailJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				log.Printf("bad message: %v", err)
				_ = msg.Nack(false, false)
				continue
			}

			subject, text := render(&job)
			if err := mg.Send(ctx, job.To, subject, text, job.HTML); err != nil {
				log.Printf("send to %s failed: %v", job.To, err)
				_ = msg.Nack(false, true) // requeue once delivery recovers
				continue
			}
			_ = msg.Ack(false)
		}
		close(done)
	}()

	select {
	case <-stop:
	case <-done:
	}
	log.Println("mail worker exiting")
}

func render(job *mailer.EmailJob) (subject, text string) {
	switch job.Template {
	case mailer.TemplateResetPassword:
		link := fmt.Sprintf("%v", job.Data["ResetLink"])
		name := fmt.Sprintf("%v", job.Data["Username"])
		subject = "Reset your password"
		text = fmt.Sprintf("Hi %s,\n\nA password reset was requested for your account. "+
			"Use the link below within 30 minutes:\n\n%s\n\nIf this wasn't you, ignore this email.\n", name, link)
	default:
		subject = job.Subject
		text = job.Text
	}
	return subject, text
}
