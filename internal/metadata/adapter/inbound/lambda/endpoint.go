package lambda_handler

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/anthanhphan/go-image-metadata/internal/metadata/port"
	"github.com/aws/aws-lambda-go/events"
)

// IDParam is the path parameter carrying the record id.
const IDParam = "id"

// ResponseHeaders are sent with every lookup response.
var ResponseHeaders = map[string]string{
	"Content-Type":                "application/json",
	"Access-Control-Allow-Origin": "*",
}

// EndpointHandler serves metadata lookups behind the HTTP API.
type EndpointHandler struct {
	service port.LookupService
}

func NewEndpointHandler(service port.LookupService) *EndpointHandler {
	return &EndpointHandler{service: service}
}

// Handle always answers 200. A missing record is the JSON body null, so
// callers must inspect the body to detect absence. Store failures are returned
// as invocation errors.
func (h *EndpointHandler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	record, err := h.service.GetRecord(ctx, req.PathParameters[IDParam])
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	body, err := json.Marshal(record)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, fmt.Errorf("encode record: %w", err)
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: 200,
		Headers:    maps.Clone(ResponseHeaders),
		Body:       string(body),
	}, nil
}
