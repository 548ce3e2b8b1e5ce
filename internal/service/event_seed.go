package service

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type eventSeedFile struct {
	Events []EventInput `yaml:"events"`
}

// EventSeedResult 统计导入结果。
type EventSeedResult struct {
	Upserted int
	Failed   []string
}

// SeedEvents 从 YAML 读取 events 列表并按 event_id 覆盖写入。
// 单条校验失败只记录并跳过，其余继续导入。
func (s *EventService) SeedEvents(ctx context.Context, r io.Reader) (EventSeedResult, error) {
	var result EventSeedResult
	var file eventSeedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return result, nil
		}
		return result, fmt.Errorf("decode events yaml: %w", err)
	}

	for i, input := range file.Events {
		label := input.EventID
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if input.EventID == "" {
			s.log.Warn("event seed entry has no event_id", "entry", label)
			result.Failed = append(result.Failed, label)
			continue
		}
		event, err := s.buildEvent(input)
		if err != nil {
			s.log.Warn("event seed entry invalid", "event_id", label, "error", err)
			result.Failed = append(result.Failed, label)
			continue
		}
		if event.PageSlug == "" {
			event.PageSlug = event.EventID
		}
		if err := s.store.Upsert(ctx, event); err != nil {
			return result, fmt.Errorf("upsert event %s: %w", event.EventID, err)
		}
		result.Upserted++
		s.log.Debug("event seeded", "event_id", event.EventID)
	}
	s.log.Info("events seeded", "upserted", result.Upserted, "failed", len(result.Failed))
	return result, nil
}
