package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type created struct {
	ID string `json:"id"`
}

type client struct {
	http *http.Client
	base string
}

func main() {
	var (
		base     string
		timeout  time.Duration
		generate bool
	)

	flag.StringVar(&base, "base", "http://localhost:8001/api/v1", "Timetable API base URL")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.BoolVar(&generate, "generate", true, "Trigger timetable generation after seeding")
	flag.Parse()

	c := &client{http: &http.Client{Timeout: timeout}, base: strings.TrimRight(base, "/")}
	if err := seed(c); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	fmt.Println("Data seeded successfully")

	if !generate {
		return
	}
	result, err := c.post("/generate", nil)
	if err != nil {
		log.Fatalf("generate failed: %v", err)
	}
	fmt.Printf("Generation result: %s\n", result)
}

func seed(c *client) error {
	departmentID, err := c.create("/departments", map[string]any{"name": "Computer Science"})
	if err != nil {
		return err
	}
	courseID, err := c.create("/courses", map[string]any{"name": "B.Tech CS", "department_id": departmentID})
	if err != nil {
		return err
	}
	semesterID, err := c.create("/semesters", map[string]any{"name": "Semester 1", "course_id": courseID})
	if err != nil {
		return err
	}

	faculties := []struct {
		name  string
		hours int
	}{
		{"Dr. Smith", 40},
		{"Prof. Johnson", 40},
		{"Dr. Emily", 20},
	}
	facultyIDs := make([]string, 0, len(faculties))
	for _, f := range faculties {
		id, err := c.create("/faculties", map[string]any{"name": f.name, "department_id": departmentID, "max_hours_per_week": f.hours})
		if err != nil {
			return err
		}
		facultyIDs = append(facultyIDs, id)
	}

	rooms := []map[string]any{
		{"name": "Room 101", "capacity": 60, "room_type": "Lecture"},
		{"name": "Lab A", "capacity": 30, "room_type": "Lab"},
	}
	for _, room := range rooms {
		if _, err := c.create("/classrooms", room); err != nil {
			return err
		}
	}

	subjects := []map[string]any{
		{"name": "Data Structures", "code": "CS101", "credit_hours": 3, "weekly_frequency": 3, "faculty_id": facultyIDs[0]},
		{"name": "Algorithms", "code": "CS102", "credit_hours": 4, "weekly_frequency": 4, "faculty_id": facultyIDs[1]},
		{"name": "Programming Lab", "code": "CSL10", "credit_hours": 2, "weekly_frequency": 2, "faculty_id": facultyIDs[2]},
	}
	for _, subject := range subjects {
		subject["semester_id"] = semesterID
		if _, err := c.create("/subjects", subject); err != nil {
			return err
		}
	}
	return nil
}

func (c *client) create(path string, payload any) (string, error) {
	data, err := c.post(path, payload)
	if err != nil {
		return "", err
	}
	var entity created
	if err := json.Unmarshal(data, &entity); err != nil {
		return "", fmt.Errorf("decode %s response: %w", path, err)
	}
	if entity.ID == "" {
		return "", fmt.Errorf("%s returned no id", path)
	}
	return entity.ID, nil
}

func (c *client) post(path string, payload any) (json.RawMessage, error) {
	if c.http == nil {
		return nil, errors.New("nil client")
	}
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(http.MethodPost, c.base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s body: %w", path, err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode %s envelope (status %d): %w", path, resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if env.Error != nil {
			return nil, fmt.Errorf("POST %s: %d %s: %s", path, resp.StatusCode, env.Error.Code, env.Error.Message)
		}
		return nil, fmt.Errorf("POST %s: status %d", path, resp.StatusCode)
	}
	return env.Data, nil
}
