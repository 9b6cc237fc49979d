package reporters

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/samvad-hq/jsonapi-client/pkg/transport"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("n-1")}, nil
}

func sampleFailure() Failure {
	return Failure{ID: "f-1", Method: "DELETE", URI: "https://api.example.com/items/3", Status: 500}
}

func TestSQSReporterSendsFailure(t *testing.T) {
	client := &fakeSQSClient{}
	rep := &sqsReporter{id: "queue", typ: TypeSQS, queueURL: "https://sqs/queue", client: client, log: noopLogger{}}

	if err := rep.Report(context.Background(), sampleFailure()); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if aws.ToString(client.input.QueueUrl) != "https://sqs/queue" {
		t.Fatalf("unexpected queue url %q", aws.ToString(client.input.QueueUrl))
	}

	var got Failure
	if err := json.Unmarshal([]byte(aws.ToString(client.input.MessageBody)), &got); err != nil {
		t.Fatalf("decode message body: %v", err)
	}
	if got.ID != "f-1" || got.Status != 500 {
		t.Fatalf("unexpected message body %#v", got)
	}
	if aws.ToString(client.input.MessageAttributes["status"].StringValue) != "500" {
		t.Fatalf("missing status attribute: %#v", client.input.MessageAttributes)
	}
	if aws.ToString(client.input.MessageAttributes["method"].StringValue) != "DELETE" {
		t.Fatalf("missing method attribute: %#v", client.input.MessageAttributes)
	}
}

func TestSQSReporterPropagatesError(t *testing.T) {
	boom := errors.New("throttled")
	rep := &sqsReporter{id: "queue", client: &fakeSQSClient{err: boom}, log: noopLogger{}}
	if err := rep.Report(context.Background(), sampleFailure()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}

func TestSNSReporterPublishesFailure(t *testing.T) {
	client := &fakeSNSClient{}
	rep := &snsReporter{id: "alerts", typ: TypeSNS, topicARN: "arn:aws:sns:eu-west-1:123:alerts", client: client, log: noopLogger{}}

	if err := rep.Report(context.Background(), sampleFailure()); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if aws.ToString(client.input.TopicArn) != "arn:aws:sns:eu-west-1:123:alerts" {
		t.Fatalf("unexpected topic %q", aws.ToString(client.input.TopicArn))
	}
	if got := aws.ToString(client.input.Subject); got != "DELETE https://api.example.com/items/3 returned 500" {
		t.Fatalf("unexpected subject %q", got)
	}
}

func TestSNSReporterPropagatesError(t *testing.T) {
	boom := errors.New("auth")
	rep := &snsReporter{id: "alerts", client: &fakeSNSClient{err: boom}, log: noopLogger{}}
	if err := rep.Report(context.Background(), sampleFailure()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}

func TestSNSSubjectTruncated(t *testing.T) {
	f := sampleFailure()
	f.URI = "https://api.example.com/" + strings.Repeat("x", 200)
	if got := snsSubject(f); len(got) != snsSubjectMaxLen {
		t.Fatalf("expected subject of %d chars, got %d", snsSubjectMaxLen, len(got))
	}
}

func TestSNSSubjectKeepsRunesWhole(t *testing.T) {
	f := sampleFailure()
	f.URI = "https://api.example.com/" + strings.Repeat("ü", 200)
	got := snsSubject(f)
	if !utf8.ValidString(got) {
		t.Fatalf("subject is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != snsSubjectMaxLen {
		t.Fatalf("expected %d runes, got %d", snsSubjectMaxLen, n)
	}
}

func TestSQSMessageStaysSmallForLargeBodies(t *testing.T) {
	client := &fakeSQSClient{}
	rep := &sqsReporter{id: "queue", queueURL: "https://sqs/queue", client: client, log: noopLogger{}}

	f := NewFailure(&transport.UnexpectedStatusError{Debug: transport.DebugInfo{
		Response: transport.ResponseInfo{Status: 502, Body: strings.Repeat("<p>bad gateway</p>", 20_000)},
	}})
	if err := rep.Report(context.Background(), f); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if n := len(aws.ToString(client.input.MessageBody)); n > 8<<10 {
		t.Fatalf("message body too large: %d bytes", n)
	}
}

func TestQueueReportersRequireConfig(t *testing.T) {
	if _, err := newSQSReporter(context.Background(), ReporterConfig{ID: "q"}, nil); err == nil {
		t.Fatalf("expected error for missing sqs block")
	}
	if _, err := newSNSReporter(context.Background(), ReporterConfig{ID: "s"}, nil); err == nil {
		t.Fatalf("expected error for missing sns block")
	}
	if _, err := newPubSubReporter(context.Background(), ReporterConfig{ID: "p"}, nil); err == nil {
		t.Fatalf("expected error for missing pubsub block")
	}
}
