package invoker

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/a2a-calculator/pkg/a2a"
)

func decode(raw string) *a2a.SendMessageResult {
	var result a2a.SendMessageResult

	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		panic(err)
	}

	return &result
}

func TestExtractText(t *testing.T) {
	Convey("Given message/send results", t, func() {
		Convey("A task status message wins", func() {
			result := decode(`{
				"kind": "task", "id": "t1", "contextId": "c1",
				"status": {"state": "completed", "message": {"kind": "message", "messageId": "m", "role": "agent",
					"parts": [{"kind": "text", "text": "42"}]}},
				"history": [{"kind": "message", "messageId": "h", "role": "agent", "parts": [{"kind": "text", "text": "older"}]}]
			}`)
			So(ExtractText(result), ShouldEqual, "42")
		})

		Convey("The most recent agent history message is used next", func() {
			result := decode(`{
				"kind": "task", "id": "t1", "contextId": "c1",
				"status": {"state": "completed"},
				"history": [
					{"kind": "message", "messageId": "1", "role": "agent", "parts": [{"kind": "text", "text": "first"}]},
					{"kind": "message", "messageId": "2", "role": "agent", "parts": [{"kind": "text", "text": "second"}]},
					{"kind": "message", "messageId": "3", "role": "user", "parts": [{"kind": "text", "text": "question"}]},
					{"kind": "message", "messageId": "4", "role": "agent", "parts": [{"kind": "text", "text": "   "}]}
				]
			}`)
			So(ExtractText(result), ShouldEqual, "second")
		})

		Convey("Artifacts are scanned from the end when history has nothing", func() {
			result := decode(`{
				"kind": "task", "id": "t1", "contextId": "c1",
				"status": {"state": "completed"},
				"artifacts": [
					{"artifactId": "a", "parts": [{"kind": "text", "text": "old"}]},
					{"artifactId": "b", "parts": [{"kind": "text", "text": " x "}, {"kind": "data", "data": {"v": 1}}, {"kind": "text", "text": "y"}]},
					{"artifactId": "c", "parts": [{"kind": "file", "file": {"uri": "file:///tmp/x"}}]}
				]
			}`)
			So(ExtractText(result), ShouldEqual, "x  y")
		})

		Convey("A task without any text yields the fallback", func() {
			result := decode(`{"kind": "task", "id": "t1", "contextId": "c1", "status": {"state": "working"}}`)
			So(ExtractText(result), ShouldEqual, NoResponseContent)
		})

		Convey("A direct message returns its text", func() {
			result := decode(`{"kind": "message", "messageId": "m", "role": "agent", "parts": [{"kind": "text", "text": "30"}]}`)
			So(ExtractText(result), ShouldEqual, "30")
		})

		Convey("A message with empty text yields the fallback", func() {
			result := decode(`{"kind": "message", "messageId": "m", "role": "agent", "parts": []}`)
			So(ExtractText(result), ShouldEqual, NoResponseContent)
		})

		Convey("Results without a kind are recognized by shape", func() {
			So(ExtractText(decode(`{"id": "t", "status": {"state": "completed",
				"message": {"role": "agent", "parts": [{"kind": "text", "text": "shape"}]}}}`)), ShouldEqual, "shape")
			So(ExtractText(decode(`{"role": "agent", "parts": [{"text": "plain"}]}`)), ShouldEqual, "plain")
		})

		Convey("A null result yields the fallback", func() {
			So(ExtractText(decode(`null`)), ShouldEqual, NoResponseContent)
			So(ExtractText(nil), ShouldEqual, NoResponseContent)
		})
	})
}

func TestExtractTextSurvivesJSON(t *testing.T) {
	Convey("Given results built in memory", t, func() {
		answered := a2a.NewTask("t1", "c1")
		answered.History = append(answered.History, *a2a.NewTextMessage(a2a.RoleUser, "Calculate 6*7"))
		answered.ToStatus(a2a.TaskStateCompleted, a2a.NewTextMessage(a2a.RoleAgent, "42"))

		artifactOnly := a2a.NewTask("t2", "c2")
		artifactOnly.ToStatus(a2a.TaskStateCompleted, nil)
		artifactOnly.Artifacts = []a2a.Artifact{{
			ArtifactID: "a1",
			Name:       "result",
			Parts:      []a2a.Part{a2a.NewTextPart("1.5"), {Kind: a2a.PartKindData, Data: map[string]any{"v": 1.5}}},
		}}

		results := []struct {
			name   string
			result *a2a.SendMessageResult
		}{
			{"task", &a2a.SendMessageResult{Task: answered}},
			{"message", &a2a.SendMessageResult{Message: a2a.NewTextMessage(a2a.RoleAgent, "30")}},
			{"artifact only", &a2a.SendMessageResult{Task: artifactOnly}},
		}

		for _, tt := range results {
			before := ExtractText(tt.result)

			raw, err := json.Marshal(tt.result)
			So(err, ShouldBeNil)

			Convey("The "+tt.name+" text is the same after a round trip", func() {
				So(before, ShouldNotEqual, NoResponseContent)
				So(ExtractText(decode(string(raw))), ShouldEqual, before)
			})
		}
	})
}

func TestPartsText(t *testing.T) {
	Convey("Given mixed parts", t, func() {
		parts := []a2a.Part{
			a2a.NewTextPart("a"),
			{Kind: a2a.PartKindData, Data: map[string]any{"k": "v"}},
			a2a.NewTextPart("b "),
		}

		So(a2a.PartsText(parts), ShouldEqual, "a b")
		So(a2a.PartsText(nil), ShouldEqual, "")
	})
}
