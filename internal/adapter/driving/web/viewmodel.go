package web

import (
	"time"

	vm "github.com/ericfisherdev/prototypehub/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/prototypehub/internal/application"
	"github.com/ericfisherdev/prototypehub/internal/domain/model"
)

// toHistoryViewModel converts the aggregated pull requests into the history page model.
func toHistoryViewModel(prs []model.PullRequest) vm.HistoryViewModel {
	cards := make([]vm.PRCardViewModel, 0, len(prs))
	for _, pr := range prs {
		cards = append(cards, toPRCardViewModel(pr))
	}

	return vm.HistoryViewModel{
		Repository:    application.RepoFullName,
		RepositoryURL: "https://github.com/" + application.RepoFullName,
		PullRequests:  cards,
	}
}

// toPRCardViewModel converts a single domain PullRequest to a PRCardViewModel.
func toPRCardViewModel(pr model.PullRequest) vm.PRCardViewModel {
	reviews := make([]vm.ReviewViewModel, 0, len(pr.Reviews))
	for _, r := range pr.Reviews {
		reviews = append(reviews, vm.ReviewViewModel{
			ID:        r.ID,
			BodyHTML:  RenderMarkdown(r.Body),
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return vm.PRCardViewModel{
		ID:         pr.ID,
		Number:     pr.Number,
		Title:      pr.Title,
		URL:        pr.URL,
		Author:     pr.Author,
		CreatedOn:  pr.CreatedAt.UTC().Format(time.DateOnly),
		State:      string(pr.State),
		StateClass: stateClass(pr.State),
		Reviews:    reviews,
		DiffHTML:   RenderDiff(pr.Diff),
	}
}

// stateClass maps a PR state to the badge colour class used by history.css.
func stateClass(state model.PRState) string {
	switch state {
	case model.PRStateMerged:
		return "state-merged"
	case model.PRStateClosed:
		return "state-closed"
	default:
		return "state-open"
	}
}
