// Command loadtest fires a burst of concurrent admission requests for one
// (car, slot) pair at a deployed bookings-service function and reports the
// outcome split. With the lock-row transaction in place, exactly one request
// wins regardless of the burst size.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"slices"
	"strconv"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/google/uuid"
	"golang.org/x/exp/maps"

	"showroom/booking/model"
	"showroom/lambdautils"
)

func main() {
	functionName := flag.String("function", "BookingsService", "bookings-service function name")
	region := flag.String("region", "eu-west-3", "AWS region")
	carID := flag.String("car", "", "car id to contend for (fresh uuid when empty)")
	slotTime := flag.String("slot", "2025-09-08T21:00:00Z", "slot time to contend for")
	requests := flag.Int("n", 20, "number of concurrent requests")
	flag.Parse()

	if *carID == "" {
		*carID = uuid.NewString()
	}

	client := lambdautils.CreateLambdaClient(*region)

	inputQueue := make(chan int, *requests)
	outputQueue := make(chan int, *requests)

	var senderWg sync.WaitGroup
	for n := 0; n < *requests; n++ {
		senderWg.Add(1)
		go func() {
			defer senderWg.Done()
			for userIndex := range inputQueue {
				outputQueue <- sendAdmissionRequest(client, *functionName, *carID, *slotTime, userIndex)
			}
		}()
	}

	for i := 0; i < *requests; i++ {
		inputQueue <- i
	}
	close(inputQueue)
	senderWg.Wait()
	close(outputQueue)

	statusCounts := map[int]int{}
	for status := range outputQueue {
		statusCounts[status]++
	}

	statuses := maps.Keys(statusCounts)
	slices.Sort(statuses)
	fmt.Printf("car=%v slot=%v requests=%v\n", *carID, *slotTime, *requests)
	for _, status := range statuses {
		fmt.Printf("  %v: %v\n", status, statusCounts[status])
	}

	if statusCounts[201] != 1 {
		log.Fatalf("expected exactly one admission, got %v", statusCounts[201])
	}
}

// sendAdmissionRequest invokes the handler directly with a synthesized API
// Gateway event. Each sender carries its own subject so the contention is
// purely on the slot, as it would be between real users.
func sendAdmissionRequest(client *awslambda.Client, functionName, carID, slotTime string, userIndex int) int {
	body, err := json.Marshal(model.CreateBookingRequest{CarID: carID, SlotTime: slotTime})
	if err != nil {
		log.Printf("could not marshal request for user %v: %v", userIndex, err)
		return 0
	}

	event := events.APIGatewayV2HTTPRequest{
		Body: string(body),
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: "POST",
				Path:   "/bookings",
			},
			Authorizer: &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
				Lambda: map[string]any{
					"sub": "loadtest-user-" + strconv.Itoa(userIndex),
				},
			},
		},
	}

	response, err := lambdautils.InvokeHTTPHandler(context.Background(), client, functionName, event)
	if err != nil {
		log.Printf("invoke failed for user %v: %v", userIndex, err)
		return 0
	}
	return response.StatusCode
}
