package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hisabkitab/hisab/internal/nlu"
)

func TestGreetingDetection(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{text: "hi", want: true},
		{text: "hello!", want: true},
		{text: "hey", want: true},
		{text: "hii", want: true},
		{text: "hlo", want: true},
		{text: "good morning", want: true},
		{text: "hi there", want: false},
		{text: "hello can you show my balance", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, isGreetingQuestion(nlu.Normalize(tt.text)))
		})
	}
}

func TestNameDetection(t *testing.T) {
	assert.True(t, isNameQuestion("my name"))
	assert.True(t, isNameQuestion("username"))
	assert.True(t, isNameQuestion("what is my name"))
	assert.True(t, isNameQuestion("whats my user name"))
	assert.False(t, isNameQuestion("name a category i spent on"))
}

func TestPhoneDetection(t *testing.T) {
	assert.True(t, isPhoneQuestion("what is my phone number"))
	assert.True(t, isPhoneQuestion("contact no"))
	assert.True(t, isPhoneQuestion("my registered mobile"))
	assert.False(t, isPhoneQuestion("number of transactions"))
	assert.False(t, isPhoneQuestion("mar inflow"))
}

func TestEmailDetection(t *testing.T) {
	assert.True(t, isEmailQuestion("email"))
	assert.True(t, isEmailQuestion("my email"))
	assert.True(t, isEmailQuestion("mail id"))
	assert.True(t, isEmailQuestion("email address"))
	assert.False(t, isEmailQuestion("send email reminders"))
	assert.False(t, isEmailQuestion("mar balance"))
}

func TestCapabilitiesDetection(t *testing.T) {
	assert.True(t, isCapabilitiesQuestion("what can you do"))
	assert.True(t, isCapabilitiesQuestion("help"))
	assert.True(t, isCapabilitiesQuestion("show me some examples"))
	assert.False(t, isCapabilitiesQuestion("mar full details"))
}

func TestAINoteDetection(t *testing.T) {
	assert.True(t, isAINoteQuestion("what is this openai thing"))
	assert.True(t, isAINoteQuestion("explain the api key message"))
	assert.False(t, isAINoteQuestion("what is this charge"))
	assert.False(t, isAINoteQuestion("openai"))
}

func TestCapabilitiesAnswerUsesName(t *testing.T) {
	withName := capabilitiesAnswer("asha")
	assert.Contains(t, withName, "asha, I can answer using your cashbook data")
	assert.Contains(t, withName, "budget forecast (if you set a monthly budget in the app)")

	anonymous := capabilitiesAnswer("")
	assert.Contains(t, anonymous, "I can answer using your cashbook data")
}
