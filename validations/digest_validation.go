package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainFeed "github.com/AzielCF/az-digest/domains/feed"
	domainGating "github.com/AzielCF/az-digest/domains/gating"
	domainSummary "github.com/AzielCF/az-digest/domains/summary"
	pkgError "github.com/AzielCF/az-digest/pkg/error"
)

func ValidateDecideRequest(ctx context.Context, request domainGating.DecideRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Text, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateSummarizeRequest(ctx context.Context, request domainSummary.SummarizeRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Text, validation.Required),
		validation.Field(&request.Role, validation.In(
			domainSummary.RoleArticle,
			domainSummary.RoleAudioBrief,
			domainSummary.RoleClassification,
		)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateRunRequest(ctx context.Context, request domainFeed.RunRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Kind, validation.Required, validation.In(
			domainFeed.KindNews,
			domainFeed.KindYoutube,
		)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
