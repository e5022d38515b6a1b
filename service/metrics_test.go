package main

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloudWatch struct {
	cloudwatchiface.CloudWatchAPI

	mu     sync.Mutex
	err    error
	inputs []*cloudwatch.PutMetricDataInput
}

func (f *fakeCloudWatch) PutMetricData(in *cloudwatch.PutMetricDataInput) (*cloudwatch.PutMetricDataOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func (f *fakeCloudWatch) calls() []*cloudwatch.PutMetricDataInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*cloudwatch.PutMetricDataInput(nil), f.inputs...)
}

func TestCloudWatchMetrics_RouteMetrics(t *testing.T) {
	cw := &fakeCloudWatch{}
	m := &CloudWatchMetrics{cw: cw, logger: nopLogger()}

	m.sendRouteMetrics("/coffee_drinks/*", 404, 250*time.Millisecond)

	calls := cw.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, metricsNamespace, aws.StringValue(calls[0].Namespace))
	require.Len(t, calls[0].MetricData, 2)

	duration := calls[0].MetricData[0]
	assert.Equal(t, "RequestDuration", aws.StringValue(duration.MetricName))
	assert.Equal(t, 0.25, aws.Float64Value(duration.Value))

	count := calls[0].MetricData[1]
	assert.Equal(t, "RequestCount", aws.StringValue(count.MetricName))
	require.Len(t, count.Dimensions, 2)
	assert.Equal(t, "404", aws.StringValue(count.Dimensions[1].Value))
}

func TestCloudWatchMetrics_CreatedRowsAndErrors(t *testing.T) {
	cw := &fakeCloudWatch{err: errors.New("throttled")}
	m := &CloudWatchMetrics{cw: cw, logger: nopLogger()}

	m.sendCreatedRowMetric(coffeeShopsCollection)
	m.sendErrorMetric("backend_error")

	calls := cw.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "CreatedRows", aws.StringValue(calls[0].MetricData[0].MetricName))
	assert.Equal(t, coffeeShopsCollection, aws.StringValue(calls[0].MetricData[0].Dimensions[0].Value))
	assert.Equal(t, "ErrorCount", aws.StringValue(calls[1].MetricData[0].MetricName))
}

func TestCloudWatchMetrics_NilIsNoop(t *testing.T) {
	var m *CloudWatchMetrics

	assert.NotPanics(t, func() {
		m.sendRouteMetrics("/health", 200, time.Millisecond)
		m.sendCreatedRowMetric(usersCollection)
		m.sendErrorMetric("backend_error")
	})
}
