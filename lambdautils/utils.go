package lambdautils

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"showroom/apperrors"
)

// ClaimsBag pulls the raw authorizer claims out of an API Gateway v2 event.
// The JWT authorizer and a custom Lambda authorizer park them in different
// places and shapes; both are merged into one untyped bag for the resolver.
func ClaimsBag(event events.APIGatewayV2HTTPRequest) map[string]any {
	authorizer := event.RequestContext.Authorizer
	if authorizer == nil {
		return nil
	}

	claims := map[string]any{}
	for key, value := range authorizer.Lambda {
		claims[key] = value
	}
	if authorizer.JWT != nil {
		for key, value := range authorizer.JWT.Claims {
			claims[key] = value
		}
	}
	if len(claims) == 0 {
		return nil
	}
	return claims
}

// JSONResponse marshals body into an API Gateway response. Marshal failures
// degrade to a bare 500; the payloads here are all known serializable types.
func JSONResponse(status int, body any) events.APIGatewayV2HTTPResponse {
	data, err := json.Marshal(body)
	if err != nil {
		log.Printf("could not marshal response body: %v", err)
		return events.APIGatewayV2HTTPResponse{StatusCode: 500}
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(data),
	}
}

// ErrorResponse maps a service error onto its taxonomy status and body.
// Anything that is not an AppError is an unclassified server failure.
func ErrorResponse(err error) events.APIGatewayV2HTTPResponse {
	if appErr, ok := apperrors.As(err); ok {
		return JSONResponse(appErr.HTTPStatus, appErr.Response())
	}
	return JSONResponse(500, apperrors.ErrorResponse{Error: "internal", Message: err.Error()})
}

func CreateLambdaClient(region string) *lambda.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithClientLogMode(aws.LogRetries),
	)
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}
	return lambda.NewFromConfig(cfg)
}

// InvokeHTTPHandler sends a synthesized API Gateway event to a deployed
// handler function and decodes the HTTP-shaped response. The load driver uses
// this to reach the bookings service without going through the gateway.
func InvokeHTTPHandler(ctx context.Context, client *lambda.Client, functionName string, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	output, err := client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(functionName),
		Payload:      payload,
	})
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	var response events.APIGatewayV2HTTPResponse
	if err := json.Unmarshal(output.Payload, &response); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return response, nil
}
