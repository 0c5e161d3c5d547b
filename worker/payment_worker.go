package worker

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"supermarket-pos-api/database"
	"supermarket-pos-api/models"
	"supermarket-pos-api/queue"
	"supermarket-pos-api/services/email"
	"supermarket-pos-api/services/mpesa"
)

// Worker processes the background jobs produced by the M-PESA callback and
// the checkout flow: settling payments, polling unresolved pushes and
// sending low-stock alerts.
type Worker struct {
	queue        *queue.Queue
	db           *database.Connection
	mpesaService *mpesa.Service
	emailService *email.SMTPService
	alertEmail   string
	shutdown     chan struct{}
	isRunning    bool
}

func NewWorker(q *queue.Queue, db *database.Connection, ms *mpesa.Service, es *email.SMTPService, alertEmail string) *Worker {
	return &Worker{
		queue:        q,
		db:           db,
		mpesaService: ms,
		emailService: es,
		alertEmail:   alertEmail,
		shutdown:     make(chan struct{}),
	}
}

// Start begins processing jobs with the given number of goroutines plus one
// mover for the delayed queue.
func (w *Worker) Start(concurrency int) {
	w.isRunning = true

	for i := 0; i < concurrency; i++ {
		go w.processJobs(i)
	}
	go w.processDelayed()

	log.Printf("Started %d worker goroutines", concurrency)
}

func (w *Worker) Stop() {
	if !w.isRunning {
		return
	}

	log.Println("Stopping worker...")
	close(w.shutdown)
	w.isRunning = false
}

func (w *Worker) processDelayed() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdown:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := w.queue.ProcessDelayedJobs(ctx); err != nil {
				log.Printf("Error processing delayed jobs: %v", err)
			}
			cancel()
		}
	}
}

func (w *Worker) processJobs(workerID int) {
	log.Printf("Worker %d starting", workerID)

	for {
		select {
		case <-w.shutdown:
			log.Printf("Worker %d shutting down", workerID)
			return
		default:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			job, err := w.queue.Dequeue(ctx, 5*time.Second)
			cancel()

			if err != nil {
				log.Printf("Worker %d: Error dequeuing job: %v", workerID, err)
				time.Sleep(time.Second)
				continue
			}

			if job == nil {
				time.Sleep(100 * time.Millisecond)
				continue
			}

			log.Printf("Worker %d processing job %s of type %s", workerID, job.ID, job.Type)

			jobErr := w.processJob(job)
			if jobErr != nil {
				log.Printf("Worker %d: Error processing job %s: %v", workerID, job.ID, jobErr)

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if failErr := w.queue.FailJob(ctx, job, jobErr); failErr != nil {
					log.Printf("Worker %d: Error marking job %s as failed: %v", workerID, job.ID, failErr)
				}
				cancel()

				time.Sleep(time.Second)
				continue
			}

			ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
			if completeErr := w.queue.CompleteJob(ctx, job); completeErr != nil {
				log.Printf("Worker %d: Error marking job %s as complete: %v", workerID, job.ID, completeErr)
			}
			cancel()
		}
	}
}

func (w *Worker) processJob(job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeFinalizePayment:
		return w.processFinalizePayment(job)
	case queue.JobTypeStatusCheck:
		return w.processStatusCheck(job)
	case queue.JobTypeSendReceipt:
		return w.processSendReceipt(job)
	case queue.JobTypeLowStockAlert:
		return w.processLowStockAlert(job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// processFinalizePayment moves the stored payment out of 'pending' based on
// the callback outcome and stamps the receipt onto the sale transaction.
func (w *Worker) processFinalizePayment(job *queue.Job) error {
	checkoutRequestID, ok := job.Data["checkout_request_id"].(string)
	if !ok || checkoutRequestID == "" {
		return fmt.Errorf("invalid checkout_request_id in job data")
	}

	resultCode, _ := job.Data["result_code"].(float64)
	resultDesc, _ := job.Data["result_desc"].(string)

	if resultCode != 0 {
		updated, err := w.db.FailMpesaPayment(checkoutRequestID, resultDesc)
		if err != nil {
			return err
		}
		if !updated {
			log.Printf("Payment %s already resolved, skipping", checkoutRequestID)
		}
		return nil
	}

	receiptNumber, _ := job.Data["receipt_number"].(string)

	updated, err := w.db.CompleteMpesaPayment(checkoutRequestID, receiptNumber, resultDesc)
	if err != nil {
		return err
	}
	if !updated {
		log.Printf("Payment %s already resolved, skipping", checkoutRequestID)
		return nil
	}

	payment, err := w.db.GetMpesaPayment(checkoutRequestID)
	if err != nil {
		return fmt.Errorf("failed to load payment %s: %v", checkoutRequestID, err)
	}

	if payment.Reference != "" && receiptNumber != "" {
		if err := w.db.SetPaymentReference(payment.Reference, receiptNumber); err != nil {
			return err
		}
		log.Printf("Linked receipt %s to sale %s", receiptNumber, payment.Reference)
	}

	// The receipt email runs as its own job so a mail outage never blocks
	// or retries the settlement itself.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = w.queue.Enqueue(ctx, queue.JobTypeSendReceipt, map[string]interface{}{
		"checkout_request_id": checkoutRequestID,
	})
	if err != nil {
		log.Printf("Error enqueueing receipt email for %s: %v", checkoutRequestID, err)
	}

	return nil
}

// processSendReceipt mails the settlement receipt for a completed payment to
// the store mailbox.
func (w *Worker) processSendReceipt(job *queue.Job) error {
	checkoutRequestID, ok := job.Data["checkout_request_id"].(string)
	if !ok || checkoutRequestID == "" {
		return fmt.Errorf("invalid checkout_request_id in job data")
	}

	payment, err := w.db.GetMpesaPayment(checkoutRequestID)
	if err != nil {
		return fmt.Errorf("failed to load payment %s: %v", checkoutRequestID, err)
	}

	if payment.Status != "completed" {
		log.Printf("Payment %s is %s, skipping receipt email", checkoutRequestID, payment.Status)
		return nil
	}

	if w.alertEmail == "" {
		log.Printf("Payment %s confirmed but no receipt mailbox configured", checkoutRequestID)
		return nil
	}

	var sale *models.Transaction
	if payment.Reference != "" {
		sale, err = w.db.GetTransactionByReference(payment.Reference)
		if err != nil {
			log.Printf("Error loading sale %s for receipt email: %v", payment.Reference, err)
		}
	}

	subject := fmt.Sprintf("Payment receipt for sale %s", payment.Reference)
	body := email.BuildPaymentReceipt(payment, sale)
	if err := w.emailService.SendEmail(w.alertEmail, subject, body); err != nil {
		return fmt.Errorf("failed to send receipt email: %v", err)
	}

	log.Printf("Sent receipt email for sale %s (receipt %s)", payment.Reference, payment.ReceiptNumber)
	return nil
}

// processStatusCheck resolves a push whose callback never arrived. A
// transport failure returns an error so the queue retries with backoff.
func (w *Worker) processStatusCheck(job *queue.Job) error {
	checkoutRequestID, ok := job.Data["checkout_request_id"].(string)
	if !ok || checkoutRequestID == "" {
		return fmt.Errorf("invalid checkout_request_id in job data")
	}

	payment, err := w.db.GetMpesaPayment(checkoutRequestID)
	if err != nil {
		return fmt.Errorf("failed to load payment %s: %v", checkoutRequestID, err)
	}

	if payment.Status != "pending" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	result, err := w.mpesaService.CheckStatus(ctx, checkoutRequestID)
	if err != nil {
		return err
	}

	if result.Failed() {
		return fmt.Errorf("status query failed: %s", result.ResponseDescription())
	}

	resultCode, ok := result.ResultCode()
	if !ok {
		return fmt.Errorf("status query returned no result code")
	}

	if resultCode == "0" {
		if _, err := w.db.CompleteMpesaPayment(checkoutRequestID, "", "Confirmed by status query"); err != nil {
			return err
		}
		log.Printf("Payment %s confirmed by status query", checkoutRequestID)
		return nil
	}

	desc, _ := result["ResultDesc"].(string)
	if _, err := w.db.FailMpesaPayment(checkoutRequestID, desc); err != nil {
		return err
	}
	log.Printf("Payment %s resolved as failed by status query: %s", checkoutRequestID, desc)
	return nil
}

func (w *Worker) processLowStockAlert(job *queue.Job) error {
	rawIDs, ok := job.Data["product_ids"].([]interface{})
	if !ok || len(rawIDs) == 0 {
		return fmt.Errorf("invalid product_ids in job data")
	}

	threshold := 10
	if t, ok := job.Data["threshold"].(float64); ok && t > 0 {
		threshold = int(t)
	}

	var low []models.Product
	for _, raw := range rawIDs {
		id, ok := raw.(float64)
		if !ok {
			continue
		}
		product, err := w.db.GetProductByID(int(id))
		if err != nil {
			log.Printf("Error loading product %v for stock alert: %v", raw, err)
			continue
		}
		if product.StockQuantity <= threshold {
			low = append(low, *product)
		}
	}

	if len(low) == 0 {
		return nil
	}

	if w.alertEmail == "" {
		log.Printf("Low stock detected for %d products but no alert email configured", len(low))
		return nil
	}

	var names []string
	for _, p := range low {
		names = append(names, fmt.Sprintf("%s (%d left)", p.Name, p.StockQuantity))
	}

	subject := "Low stock alert"
	body := email.BuildLowStockAlert(low)
	if err := w.emailService.SendEmail(w.alertEmail, subject, body); err != nil {
		return fmt.Errorf("failed to send low stock alert: %v", err)
	}

	log.Printf("Sent low stock alert for: %s", strings.Join(names, ", "))
	return nil
}
