package pubsub

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/chernandez90/InsurancePortal/pkg/log"
)

func TestKafkaPublisher_ReportLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	k := &KafkaPublisher{logger: log.New(log.Config{Level: "info"}, &buf)}

	topic := channelToTopic(ChannelClaimEvents)
	k.report(&kafka.Message{TopicPartition: kafka.TopicPartition{Topic: &topic, Error: errors.New("broker unreachable")}})
	k.report(&kafka.Message{TopicPartition: kafka.TopicPartition{Error: errors.New("no topic")}})
	k.report(kafka.NewError(kafka.ErrAllBrokersDown, "all brokers down", false))
	k.report(&kafka.Message{TopicPartition: kafka.TopicPartition{Topic: &topic}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d: %s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "kafka delivery failed") || !strings.Contains(lines[0], "claims-events") {
		t.Errorf("unexpected delivery log %s", lines[0])
	}
	if !strings.Contains(lines[2], "kafka producer error") || !strings.Contains(lines[2], `"fatal":false`) {
		t.Errorf("unexpected producer error log %s", lines[2])
	}
}
