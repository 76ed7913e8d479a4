package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"contextchat/internal/app"
	"contextchat/internal/model"
	"contextchat/internal/pkg/logger"
)

// FileProcessWorker consumes queued file-processing jobs and runs the same
// extraction path as the synchronous endpoint. Jobs are independent per file,
// so a failed job is dropped without blocking the queue.
type FileProcessWorker struct {
	conn        *amqp.Connection
	fileService *app.FileService
	queueName   string
	log         *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewFileProcessWorker(conn *amqp.Connection, fileService *app.FileService, queueName string, log *logger.Logger) *FileProcessWorker {
	if log == nil {
		log = logger.Nop()
	}
	return &FileProcessWorker{
		conn:        conn,
		fileService: fileService,
		queueName:   queueName,
		log:         log,
	}
}

func (w *FileProcessWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var job model.FileProcessJob
				if err := json.Unmarshal(d.Body, &job); err != nil {
					w.log.Error("worker decode job failed", "error", err)
					_ = d.Nack(false, false)
					continue
				}

				result, err := w.fileService.Process(workerCtx, app.ProcessFileInput{
					FileID:   job.FileID,
					FilePath: job.FilePath,
					FileName: job.FileName,
					FileType: job.FileType,
				})
				if err != nil {
					w.log.Error("worker process file failed", "file_id", job.FileID, "error", err)
					_ = d.Nack(false, false)
					continue
				}

				w.log.Info("worker processed file",
					"file_id", job.FileID, "content_length", result.ContentLength)
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *FileProcessWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
