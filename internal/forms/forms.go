// Package forms validates user input before any request is sent.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/xpost-dev/xpost/internal/api"
)

// MaxTweetLength is the post length limit in characters.
const MaxTweetLength = 280

// ScheduleLayout is how a schedule is typed in the composer, in local time.
const ScheduleLayout = "2006-01-02 15:04"

// Tones accepted by the AI generator, in display order.
var Tones = []string{"professional", "casual", "humorous", "inspirational"}

// ValidationError lists every problem found in one form.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// IsValidation reports whether err came from form validation.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	validate = mustValidator()

	handlePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)
)

// customRules are the tags the forms use beyond the validator built-ins.
var customRules = map[string]validator.Func{
	"notblank": validators.NotBlank,
	"handle": func(fl validator.FieldLevel) bool {
		return handlePattern.MatchString(fl.Field().String())
	},
}

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return strings.ToLower(f.Name)
	})
	for tag, fn := range customRules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %q validation: %w", tag, err)
		}
	}
	return v, nil
}

func mustValidator() *validator.Validate {
	v, err := newValidator()
	if err != nil {
		panic(err)
	}
	return v
}

func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return &ValidationError{Messages: msgs}
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "handle":
		return field + " may only contain letters, digits and underscores (max 15)"
	case "url":
		return fmt.Sprintf("%s %q is not an absolute URL", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// ============================================================================
// Tweets
// ============================================================================

type tweetForm struct {
	Text       string   `label:"text" validate:"notblank,max=280"`
	MediaLinks []string `label:"media link" validate:"dive,url"`
}

// ParseTweetForm validates composer input and builds the create body.
// schedule is optional and read in loc; media is a comma separated list.
func ParseTweetForm(text, schedule, media string, loc *time.Location) (api.TweetCreate, error) {
	form := tweetForm{Text: text, MediaLinks: SplitLinks(media)}

	var msgs []string
	if err := check(form); err != nil {
		var ve *ValidationError
		if !errors.As(err, &ve) {
			return api.TweetCreate{}, err
		}
		msgs = append(msgs, ve.Messages...)
	}

	var scheduledAt *api.Time
	if s := strings.TrimSpace(schedule); s != "" {
		if loc == nil {
			loc = time.Local
		}
		t, err := time.ParseInLocation(ScheduleLayout, s, loc)
		if err != nil {
			msgs = append(msgs, "schedule must look like YYYY-MM-DD HH:MM")
		} else {
			scheduledAt = api.NewTime(t)
		}
	}

	if len(msgs) > 0 {
		return api.TweetCreate{}, &ValidationError{Messages: msgs}
	}
	return api.TweetCreate{
		Text:        form.Text,
		ScheduledAt: scheduledAt,
		MediaLinks:  form.MediaLinks,
	}, nil
}

// SplitLinks splits a comma separated list, dropping blanks. Never returns nil.
func SplitLinks(s string) []string {
	links := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			links = append(links, p)
		}
	}
	return links
}

// ============================================================================
// AI generation
// ============================================================================

type generateForm struct {
	Topic       string `label:"topic" validate:"notblank"`
	Tone        string `label:"tone" validate:"oneof=professional casual humorous inspirational"`
	NumVariants int    `label:"variants" validate:"min=1,max=5"`
}

// ParseGenerate validates generator input and builds the request body.
func ParseGenerate(topic, tone string, numVariants int, hashtags, cta bool) (api.GenerateRequest, error) {
	form := generateForm{Topic: strings.TrimSpace(topic), Tone: tone, NumVariants: numVariants}
	if err := check(form); err != nil {
		return api.GenerateRequest{}, err
	}
	return api.GenerateRequest{
		Topic:           form.Topic,
		Tone:            form.Tone,
		NumVariants:     form.NumVariants,
		IncludeHashtags: hashtags,
		IncludeCTA:      cta,
	}, nil
}

// ============================================================================
// Campaigns
// ============================================================================

type campaignForm struct {
	Name string `label:"name" validate:"notblank,max=100"`
}

// ParseCampaign validates the create form. Recurrence is passed through as typed.
func ParseCampaign(name, description, recurrence string) (api.CampaignInput, error) {
	form := campaignForm{Name: strings.TrimSpace(name)}
	if err := check(form); err != nil {
		return api.CampaignInput{}, err
	}
	return api.CampaignInput{
		Name:        form.Name,
		Description: strings.TrimSpace(description),
		Recurrence:  strings.TrimSpace(recurrence),
		Slots:       []map[string]any{},
	}, nil
}

// ============================================================================
// Auth
// ============================================================================

type loginForm struct {
	Username string `label:"username" validate:"notblank"`
	Password string `label:"password" validate:"required"`
}

type registerForm struct {
	Username string `label:"username" validate:"notblank"`
	Handle   string `label:"handle" validate:"omitempty,handle"`
}

// ValidateLogin checks the login form.
func ValidateLogin(username, password string) error {
	return check(loginForm{Username: username, Password: password})
}

// ParseRegister checks the register form and normalises the optional handle.
func ParseRegister(username, handle string) (string, string, error) {
	form := registerForm{
		Username: strings.TrimSpace(username),
		Handle:   strings.TrimPrefix(strings.TrimSpace(handle), "@"),
	}
	if err := check(form); err != nil {
		return "", "", err
	}
	return form.Username, form.Handle, nil
}
