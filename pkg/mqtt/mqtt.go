// Package mqtt provides MQTT communication capabilities for the bot.
// It supports publish/subscribe patterns with request/response functionality.
package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/PancyCommands/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	mqttPrefix     = "MQTT"
	requestPrefix  = "pancy/request/"
	responsePrefix = "pancy/response/"
)

// MqttRequest represents an MQTT request message
type MqttRequest struct {
	CorrelationID string      `json:"correlationId"`
	Payload       interface{} `json:"payload,omitempty"`
}

// MqttResponse represents an MQTT response message
type MqttResponse struct {
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// RequestHandler is a function type for handling MQTT requests
type RequestHandler func(payload map[string]interface{}) (interface{}, error)

// MqttCommunicator handles MQTT communication
type MqttCommunicator struct {
	client           mqtt.Client
	responseHandlers map[string]func(MqttResponse)
	mu               sync.RWMutex
	clientID         string
}

// NewMqttCommunicator creates a communicator and connects it to the broker.
// Connection failures are logged; paho keeps retrying in the background.
func NewMqttCommunicator(host, port, username, password, clientID string) *MqttCommunicator {
	mc := &MqttCommunicator{
		responseHandlers: make(map[string]func(MqttResponse)),
		clientID:         clientID,
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", host, port)).
		SetClientID(fmt.Sprintf("%s_%s", clientID, uuid.NewString())).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(mqtt.Client) {
			logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s", clientID), mqttPrefix)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), mqttPrefix)
		})

	mc.client = mqtt.NewClient(opts)

	token := mc.client.Connect()
	if token.WaitTimeout(10*time.Second) && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error de conexión MQTT: %v", token.Error()), mqttPrefix)
	}

	return mc
}

// Destroy closes the MQTT connection
func (mc *MqttCommunicator) Destroy() {
	if mc.IsConnected() {
		mc.client.Disconnect(250)
		logger.System("Conexión MQTT cerrada exitosamente.", mqttPrefix)
	}
}

// IsConnected returns true if connected to the broker
func (mc *MqttCommunicator) IsConnected() bool {
	return mc.client != nil && mc.client.IsConnected()
}

// Publish sends a JSON encoded message to a topic
func (mc *MqttCommunicator) Publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	token := mc.client.Publish(topic, 0, false, data)
	token.Wait()
	return token.Error()
}

// Request publishes to pancy/request/<topic> and waits for the response
// carrying the same correlation ID
func (mc *MqttCommunicator) Request(topic string, payload interface{}, timeout time.Duration) (interface{}, error) {
	correlationID := uuid.NewString()
	responseTopic := responsePrefix + topic + "/" + correlationID

	responseChan := make(chan MqttResponse, 1)

	mc.mu.Lock()
	mc.responseHandlers[correlationID] = func(response MqttResponse) {
		select {
		case responseChan <- response:
		default:
		}
	}
	mc.mu.Unlock()

	defer func() {
		mc.mu.Lock()
		delete(mc.responseHandlers, correlationID)
		mc.mu.Unlock()
		mc.client.Unsubscribe(responseTopic)
	}()

	token := mc.client.Subscribe(responseTopic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var response MqttResponse
		if err := json.Unmarshal(msg.Payload(), &response); err != nil {
			logger.Warn(fmt.Sprintf("Respuesta MQTT inválida en %s: %v", msg.Topic(), err), mqttPrefix)
			return
		}

		mc.mu.RLock()
		handler, ok := mc.responseHandlers[response.CorrelationID]
		mc.mu.RUnlock()
		if ok {
			handler(response)
		}
	})
	if token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	request := MqttRequest{CorrelationID: correlationID, Payload: payload}
	if err := mc.Publish(requestPrefix+topic, request); err != nil {
		return nil, err
	}

	select {
	case response := <-responseChan:
		if response.Error != "" {
			return nil, fmt.Errorf("%s", response.Error)
		}
		return response.Data, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("la petición a '%s' ha expirado (timeout)", topic)
	}
}

// On answers requests sent to pancy/request/<requestTopic>
func (mc *MqttCommunicator) On(requestTopic string, callback RequestHandler) error {
	token := mc.client.Subscribe(requestPrefix+requestTopic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		responseTopic, response, err := handleRequest(msg.Topic(), msg.Payload(), callback)
		if err != nil {
			logger.Error(fmt.Sprintf("Error parsing MQTT request: %v", err), mqttPrefix)
			return
		}
		if err := mc.Publish(responseTopic, response); err != nil {
			logger.Error(fmt.Sprintf("Error publicando respuesta en %s: %v", responseTopic, err), mqttPrefix)
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribing to %s: %w", requestTopic, token.Error())
	}
	return nil
}

// handleRequest decodes a request, runs callback and builds the response
// together with the topic it must be published on
func handleRequest(topic string, body []byte, callback RequestHandler) (string, MqttResponse, error) {
	var request MqttRequest
	if err := json.Unmarshal(body, &request); err != nil {
		return "", MqttResponse{}, err
	}

	actualTopic := strings.TrimPrefix(topic, requestPrefix)
	responseTopic := responsePrefix + actualTopic + "/" + request.CorrelationID

	payload := make(map[string]interface{})
	if pm, ok := request.Payload.(map[string]interface{}); ok {
		payload = pm
	}
	payload["_topic"] = actualTopic

	response := MqttResponse{CorrelationID: request.CorrelationID}
	data, err := callback(payload)
	if err != nil {
		response.Error = err.Error()
	} else {
		response.Data = data
	}
	return responseTopic, response, nil
}

// Subscribe subscribes to a topic with a message handler
func (mc *MqttCommunicator) Subscribe(topic string, handler func(topic string, payload []byte)) error {
	token := mc.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	token.Wait()
	return token.Error()
}

// Unsubscribe unsubscribes from a topic
func (mc *MqttCommunicator) Unsubscribe(topic string) error {
	token := mc.client.Unsubscribe(topic)
	token.Wait()
	return token.Error()
}
