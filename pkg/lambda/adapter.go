package lambda

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
)

// FromAPIGateway converts an API Gateway proxy event into a Request
func FromAPIGateway(event events.APIGatewayProxyRequest) (*Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode request body: %w", err)
		}
		body = decoded
	}

	headers := make(map[string]string, len(event.Headers))
	for k, v := range event.Headers {
		headers[k] = v
	}

	query := make(map[string]string, len(event.QueryStringParameters))
	for k, v := range event.QueryStringParameters {
		query[k] = v
	}

	return &Request{
		Method:      event.HTTPMethod,
		Path:        event.Path,
		Headers:     headers,
		QueryParams: query,
		Body:        body,
		PathParams:  Params{},
	}, nil
}

// ToAPIGateway converts a Response into an API Gateway proxy response
func ToAPIGateway(resp *Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       string(resp.Body),
	}
}

// Dispatcher serves one function invocation
type Dispatcher interface {
	Handle(ctx context.Context, req *Request) (*Response, error)
}

// APIGatewayHandler adapts a Dispatcher to the API Gateway proxy integration
func APIGatewayHandler(router Dispatcher) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		req, err := FromAPIGateway(event)
		if err != nil {
			resp := withCORS(Message(400, err.Error()))
			return ToAPIGateway(resp), nil
		}

		resp, err := router.Handle(ctx, req)
		if err != nil {
			return events.APIGatewayProxyResponse{}, err
		}
		return ToAPIGateway(resp), nil
	}
}

// Start runs router as the Lambda function handler
func Start(router Dispatcher) {
	awslambda.Start(APIGatewayHandler(router))
}
