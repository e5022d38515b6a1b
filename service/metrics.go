package main

import (
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"go.uber.org/zap"
)

const metricsNamespace = "CoffeeFunctions/Application"

// CloudWatchMetrics handles CloudWatch metrics operations.
// A nil *CloudWatchMetrics discards everything.
type CloudWatchMetrics struct {
	cw     cloudwatchiface.CloudWatchAPI
	logger *zap.Logger
}

// NewCloudWatchMetrics creates a CloudWatch client for the given region
func NewCloudWatchMetrics(region string, logger *zap.Logger) (*CloudWatchMetrics, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	return &CloudWatchMetrics{
		cw:     cloudwatch.New(sess),
		logger: logger,
	}, nil
}

// sendRouteMetrics sends route metrics to CloudWatch
func (m *CloudWatchMetrics) sendRouteMetrics(endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}

	now := time.Now()
	m.put("Failed to send CloudWatch metrics", []*cloudwatch.MetricDatum{
		{
			MetricName: aws.String("RequestDuration"),
			Value:      aws.Float64(duration.Seconds()),
			Unit:       aws.String(cloudwatch.StandardUnitSeconds),
			Dimensions: []*cloudwatch.Dimension{
				{Name: aws.String("Endpoint"), Value: aws.String(endpoint)},
			},
			Timestamp: aws.Time(now),
		},
		{
			MetricName: aws.String("RequestCount"),
			Value:      aws.Float64(1),
			Unit:       aws.String(cloudwatch.StandardUnitCount),
			Dimensions: []*cloudwatch.Dimension{
				{Name: aws.String("Endpoint"), Value: aws.String(endpoint)},
				{Name: aws.String("StatusCode"), Value: aws.String(strconv.Itoa(statusCode))},
			},
			Timestamp: aws.Time(now),
		},
	})
}

// sendCreatedRowMetric counts inserted rows and uploaded objects per collection
func (m *CloudWatchMetrics) sendCreatedRowMetric(collection string) {
	if m == nil {
		return
	}

	m.put("Failed to send created row metric to CloudWatch", []*cloudwatch.MetricDatum{
		{
			MetricName: aws.String("CreatedRows"),
			Value:      aws.Float64(1),
			Unit:       aws.String(cloudwatch.StandardUnitCount),
			Dimensions: []*cloudwatch.Dimension{
				{Name: aws.String("Collection"), Value: aws.String(collection)},
			},
			Timestamp: aws.Time(time.Now()),
		},
	})
}

func (m *CloudWatchMetrics) sendErrorMetric(errorType string) {
	if m == nil {
		return
	}

	m.put("Failed to send error metric to CloudWatch", []*cloudwatch.MetricDatum{
		{
			MetricName: aws.String("ErrorCount"),
			Value:      aws.Float64(1),
			Unit:       aws.String(cloudwatch.StandardUnitCount),
			Dimensions: []*cloudwatch.Dimension{
				{Name: aws.String("ErrorType"), Value: aws.String(errorType)},
			},
			Timestamp: aws.Time(time.Now()),
		},
	})
}

func (m *CloudWatchMetrics) put(failureMessage string, data []*cloudwatch.MetricDatum) {
	_, err := m.cw.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(metricsNamespace),
		MetricData: data,
	})
	if err != nil {
		m.logger.Error(failureMessage, zap.Error(err))
	}
}
