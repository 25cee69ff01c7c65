package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api"

// Paste a fresh token before running; see docs for minting one.
var userToken = os.Getenv("CHAT_TEST_TOKEN")

func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func main() {
	color.Cyan("🚀 Starting Chat API Smoke Test\n")

	if userToken == "" {
		color.Red("CHAT_TEST_TOKEN is not set")
		os.Exit(1)
	}

	// 1. Create a room
	color.Yellow("\n1. Create Room")
	resp, body, err := sendRequest("POST", "/chat/v1/rooms", userToken, map[string]interface{}{
		"name": "smoke test room",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var createResp map[string]interface{}
	json.Unmarshal(body, &createResp)
	prettyPrint(createResp)

	// 2. List rooms
	color.Yellow("\n2. List Rooms")
	resp, body, err = sendRequest("GET", "/chat/v1/rooms", userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var listResp map[string]interface{}
	json.Unmarshal(body, &listResp)
	prettyPrint(listResp)

	// The remaining steps target the created room.
	data, _ := createResp["data"].(map[string]interface{})
	roomUuid, _ := data["uuid"].(string)
	if roomUuid == "" {
		color.Red("No room uuid in create response, cannot continue")
		os.Exit(1)
	}

	color.Yellow("\n3. Post Room Message")
	resp, body, err = sendRequest("POST", "/chat/v1/rooms/"+roomUuid+"/messages", userToken, map[string]interface{}{
		"content": "smoke test message",
	})
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var postResp map[string]interface{}
	json.Unmarshal(body, &postResp)
	prettyPrint(postResp)

	// 4. Fetch messages for the created room
	color.Yellow("\n4. Get Room Messages")
	resp, body, err = sendRequest("GET", "/chat/v1/rooms/"+roomUuid+"/messages", userToken, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	var msgResp map[string]interface{}
	json.Unmarshal(body, &msgResp)
	prettyPrint(msgResp)

	color.Cyan("\n✅ Smoke test finished")
}
