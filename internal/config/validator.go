package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("iana_timezone", isLoadableTimezone); err != nil {
		return nil, nil, fmt.Errorf("failed to register iana_timezone validation: %w", err)
	}
	if err := validate.RegisterTranslation("iana_timezone", trans, func(ut ut.Translator) error {
		return ut.Add("iana_timezone", "{0} must be a valid IANA time zone such as Asia/Tokyo", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("iana_timezone", strings.TrimPrefix(fe.Namespace(), "Config."))
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register iana_timezone translation: %w", err)
	}

	return validate, trans, nil
}

func isLoadableTimezone(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}
