package sqs

import (
	"Herald/internal/api/config"
	"context"
	log "log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const (
	defaultMaxMessages = 10
	defaultWaitTime    = 20
	defaultPollBackoff = 5 * time.Second
)

// HandlerFunc 单条消息的处理单元，返回 nil 才会确认删除
type HandlerFunc func(ctx context.Context, body string) error

// API 消费者依赖的 SQS 操作子集
type API interface {
	ReceiveMessage(ctx context.Context, params *awssqs.ReceiveMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *awssqs.DeleteMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.DeleteMessageOutput, error)
}

// Consumer 长轮询消费者：批量拉取，批内并发，逐条确认
type Consumer struct {
	client      API
	queueURL    string
	maxMessages int32
	waitTime    int32
	backoff     time.Duration
	handler     HandlerFunc
}

func NewConsumer(client API, cfg config.SQSConfig, handler HandlerFunc) *Consumer {
	c := &Consumer{
		client:      client,
		queueURL:    cfg.QueueURL,
		maxMessages: cfg.MaxMessages,
		waitTime:    cfg.WaitTimeSeconds,
		backoff:     time.Duration(cfg.PollBackoffSeconds) * time.Second,
		handler:     handler,
	}
	if c.maxMessages <= 0 {
		c.maxMessages = defaultMaxMessages
	}
	if c.waitTime <= 0 {
		c.waitTime = defaultWaitTime
	}
	if c.backoff <= 0 {
		c.backoff = defaultPollBackoff
	}
	return c
}

// Start 启动消费循环，仅在 ctx 取消时退出
func (c *Consumer) Start(ctx context.Context) error {
	log.Info("SQS consumer started", "queue", c.queueURL)

	for {
		if ctx.Err() != nil {
			log.Info("SQS consumer stopped")
			return nil
		}

		out, err := c.client.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: c.maxMessages,
			WaitTimeSeconds:     c.waitTime,
		})
		if err != nil {
			if ctx.Err() != nil {
				log.Info("SQS consumer stopped")
				return nil
			}

			// 拉取失败固定退避，避免请求风暴
			log.Error("SQS receive failed", "err", err)
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
			}
			continue
		}

		c.processBatch(ctx, out.Messages)
	}
}

// processBatch 并发处理一批消息，仅处理成功的逐条确认删除
func (c *Consumer) processBatch(ctx context.Context, messages []types.Message) {
	if len(messages) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, msg := range messages {
		wg.Add(1)

		go func(m types.Message) {
			defer wg.Done()

			if err := c.handler(ctx, aws.ToString(m.Body)); err != nil {
				// 不确认，等待队列可见性超时后重投递
				return
			}

			if m.ReceiptHandle == nil {
				return
			}
			if _, err := c.client.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
				QueueUrl:      aws.String(c.queueURL),
				ReceiptHandle: m.ReceiptHandle,
			}); err != nil {
				log.ErrorContext(ctx, "SQS delete failed", "err", err)
			}
		}(msg)
	}
	wg.Wait()

	log.InfoContext(ctx, "batch processed", "count", len(messages))
}
