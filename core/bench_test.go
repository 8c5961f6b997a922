package core

import "testing"

type benchNote struct {
	ID       string `json:"_id"`
	Title    string `json:"title"`
	CourseID string `json:"courseId"`
}

func BenchmarkDecodeEnvelope(b *testing.B) {
	body := []byte(`{"statusCode":200,"success":true,"message":"ok","data":[{"_id":"n1","title":"Week 1","courseId":"c1"},{"_id":"n2","title":"Week 2","courseId":"c1"}]}`)
	for b.Loop() {
		_, err := DecodeEnvelope[[]benchNote](200, body)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRedactJSONBody(b *testing.B) {
	body := []byte(`{"email":"ada@uni.edu","password":"hunter2","data":{"accessToken":"a","refreshToken":"r"}}`)
	for b.Loop() {
		_ = RedactJSONBody(body)
	}
}
