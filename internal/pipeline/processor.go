// Package pipeline 定义了消息索引的异步处理流程。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lumira-go/internal/config"
	"lumira-go/internal/model"
	"lumira-go/pkg/es"
	"lumira-go/pkg/log"
	"lumira-go/pkg/tasks"
)

// Processor 消费 Kafka 里的消息索引任务并写入 Elasticsearch。
type Processor struct {
	esCfg config.ElasticsearchConfig
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(esCfg config.ElasticsearchConfig) *Processor {
	return &Processor{esCfg: esCfg}
}

// Process 处理单个消息索引任务。
func (p *Processor) Process(ctx context.Context, task tasks.MessageIndexTask) error {
	if task.MessageID == 0 {
		return errors.New("message index task has no message id")
	}
	log.Infof("[Processor] 开始索引消息, dialog: %d, message: %d", task.DialogID, task.MessageID)

	doc := model.MessageDocument{
		DocID:     fmt.Sprintf("%d_%d", task.DialogID, task.MessageID),
		DialogID:  task.DialogID,
		MessageID: task.MessageID,
		Role:      task.Role,
		Content:   task.Content,
		Topic:     task.Topic,
		CreatedAt: time.Now(),
	}

	if err := es.IndexMessage(ctx, p.esCfg.IndexName, doc); err != nil {
		log.Errorf("[Processor] 索引消息到 Elasticsearch 失败, message: %d, error: %v", task.MessageID, err)
		return fmt.Errorf("failed to index message %d: %w", task.MessageID, err)
	}

	log.Infof("[Processor] 消息索引完成, message: %d", task.MessageID)
	return nil
}
