package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"visionrag/internal/adapter/retriever"
	"visionrag/internal/domain"
	"visionrag/internal/port"
	"visionrag/internal/router"
)

// maxAnswerHits caps the hit list carried in a response.
const maxAnswerHits = 3

// overFetchFloor is the minimum candidate count fetched before predicate
// filtering. Filtering happens after ranking, so a filtered top-k has to
// over-fetch or it starves.
const overFetchFloor = 20

// coinAliases maps question substrings to canonical coin identifiers, which
// are also the market CSV file stems.
var coinAliases = map[string]string{
	"eth":      "ethereum",
	"ethereum": "ethereum",
	"btc":      "bitcoin",
	"bitcoin":  "bitcoin",
	"sol":      "solana",
	"solana":   "solana",
	"bnb":      "binancecoin",
	"xrp":      "ripple",
	"ada":      "cardano",
	"doge":     "dogecoin",
	"ton":      "toncoin",
	"trx":      "tron",
	"avax":     "avalanche-2",
}

// marketKeywords marks questions that should be answered from market CSV
// records only.
var marketKeywords = []string{
	"價格", "走勢", "均價", "均線", "移動平均", "ma", "成交量",
	"price", "trend", "volume", "moving average", "volatility",
}

// marketDirs is the known set of market CSV origin directories.
var marketDirs = map[string]bool{
	"markets":          true,
	"markets_binance":  true,
	"markets_combined": true,
}

// AskUseCase composes the router, the retriever and market/coin predicate
// derivation into the external ask(question) contract. It never returns an
// error: every failure path degrades to a structured response whose Answer
// explains what went wrong.
type AskUseCase struct {
	router  *router.Router
	embed   port.TextEmbedder
	open    func() (*retriever.Retriever, error)
	topK    int
	hint    string // ingestion hint shown when the store is missing
}

// NewAskUseCase builds the orchestrator. The opener is invoked per question
// so a store built after startup is picked up without restarting; a missing
// store is a user-recoverable condition, not a defect.
func NewAskUseCase(rt *router.Router, embed port.TextEmbedder, open func() (*retriever.Retriever, error), topK int, ingestHint string) *AskUseCase {
	if topK <= 0 {
		topK = 5
	}
	return &AskUseCase{
		router: rt,
		embed:  embed,
		open:   open,
		topK:   topK,
		hint:   ingestHint,
	}
}

// Ask answers a natural-language question: route, embed, search, filter,
// placeholder answer. All task types currently retrieve via the text index;
// the image index is never queried from this path.
func (u *AskUseCase) Ask(question string) domain.Response {
	plan := u.router.Route(question)
	resp := domain.Response{Plan: plan, Hits: []domain.Hit{}}

	coin := DetectCoin(question)

	// Appending the detected coin biases retrieval toward that coin's
	// records.
	embedInput := question
	if coin != "" {
		embedInput = fmt.Sprintf("%s [coin:%s]", question, coin)
	}

	vecs, err := u.embed.EmbedTexts([]string{embedInput})
	if err != nil || len(vecs) == 0 {
		resp.Answer = fmt.Sprintf("[error] failed to embed question: %v", err)
		return resp
	}

	ret, err := u.open()
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			resp.Answer = fmt.Sprintf("[error] %v. %s", err, u.hint)
		} else {
			resp.Answer = fmt.Sprintf("[error] retrieval failed: %v", err)
		}
		return resp
	}

	pred := marketPredicate(question, coin)

	k := u.topK
	if k < overFetchFloor {
		k = overFetchFloor
	}
	hits, err := ret.SearchText(vecs[0], k, pred)
	if err != nil {
		resp.Answer = fmt.Sprintf("[error] retrieval failed: %v", err)
		return resp
	}
	if len(hits) > u.topK {
		hits = hits[:u.topK]
	}

	resp.Answer = placeholderAnswer(hits)
	if len(hits) > maxAnswerHits {
		hits = hits[:maxAnswerHits]
	}
	resp.Hits = hits
	return resp
}

// DetectCoin returns the canonical coin id for the first alias found in the
// question, or "". Aliases are checked in sorted order so detection is
// deterministic.
func DetectCoin(question string) string {
	lowered := strings.ToLower(question)
	keys := make([]string, 0, len(coinAliases))
	for k := range coinAliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(lowered, k) {
			return coinAliases[k]
		}
	}
	return ""
}

// marketPredicate derives the optional metadata filter. Market vocabulary or
// a detected coin restricts hits to market CSV provenance; a detected coin
// further restricts to that coin's exact file.
func marketPredicate(question, coin string) retriever.Predicate {
	if !wantsMarketOnly(question) && coin == "" {
		return nil
	}

	return func(meta domain.Metadata) bool {
		if !isMarketMeta(meta) {
			return false
		}
		if coin != "" {
			return strings.EqualFold(meta.File, coin+".csv")
		}
		return true
	}
}

func wantsMarketOnly(question string) bool {
	lowered := strings.ToLower(question)
	for _, kw := range marketKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func isMarketMeta(meta domain.Metadata) bool {
	if meta.Type == domain.SourceCSV {
		return true
	}
	return marketDirs[strings.ToLower(meta.OriginDir)]
}

func placeholderAnswer(hits []domain.Hit) string {
	if len(hits) == 0 {
		return "No hits. Make sure the index is built, or try rephrasing the question."
	}
	meta := hits[0].Meta
	origin := meta.File
	if meta.Page > 0 {
		origin = fmt.Sprintf("%s (p.%d)", origin, meta.Page)
	}
	return fmt.Sprintf("Retrieval complete; answer synthesis is not implemented.\nTop hit: %s", origin)
}
