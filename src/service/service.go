package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/mosaicnetworks/vault/src/common"
	"github.com/mosaicnetworks/vault/src/node"
	"github.com/mosaicnetworks/vault/src/token"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Service ...
type Service struct {
	sync.Mutex

	bindAddress string
	node        *node.Node
	router      *mux.Router
	logger      *logrus.Entry
}

// NewService ...
func NewService(bindAddress string, n *node.Node, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress: bindAddress,
		node:        n,
		router:      mux.NewRouter(),
		logger:      logger,
	}

	service.registerHandlers()

	return &service
}

func (s *Service) registerHandlers() {
	s.logger.Debug("Registering vault API handlers")
	s.router.HandleFunc("/stats", s.makeHandler(s.GetStats)).Methods("GET")
	s.router.HandleFunc("/genesis", s.makeHandler(s.GetGenesis)).Methods("GET")
	s.router.HandleFunc("/wallet/{key}", s.makeHandler(s.GetWallet)).Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.node.Metrics().Registry(), promhttp.HandlerOpts{})).Methods("GET")
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// Handler returns the router serving the API.
func (s *Service) Handler() http.Handler {
	return s.router
}

// Serve calls ListenAndServe. This is a blocking call.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving vault API")

	err := http.ListenAndServe(s.bindAddress, s.router)
	if err != nil {
		s.logger.Error(err)
	}
}

// GetStats ...
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := s.node.GetStats()

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(stats)
}

// GenesisProof is the JSON view of the genesis credit proof.
type GenesisProof struct {
	ID                  string `json:"id"`
	Amount              string `json:"amount"`
	Nanos               uint64 `json:"nanos"`
	Recipient           string `json:"recipient"`
	ActorSignature      string `json:"actor_signature"`
	DebitingReplicasSig string `json:"debiting_replicas_sig"`
}

// GetGenesis ...
func (s *Service) GetGenesis(w http.ResponseWriter, r *http.Request) {
	proof, err := s.node.GenesisProof()
	if err != nil {
		s.fail(w, "Retrieving genesis proof", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(GenesisProof{
		ID:                  proof.ID(),
		Amount:              proof.Amount().String(),
		Nanos:               proof.Amount().AsNano(),
		Recipient:           proof.Recipient().Hex(),
		ActorSignature:      proof.SignedCredit.ActorSignature.Hex(),
		DebitingReplicasSig: proof.DebitingReplicasSig.Hex(),
	})
}

// Wallet is the JSON view of a wallet balance.
type Wallet struct {
	Key     string `json:"key"`
	Balance string `json:"balance"`
	Nanos   uint64 `json:"nanos"`
}

// GetWallet ...
func (s *Service) GetWallet(w http.ResponseWriter, r *http.Request) {
	param := mux.Vars(r)["key"]

	key, err := common.DecodeFromString(param)
	if err != nil {
		s.logger.WithError(err).Errorf("Parsing wallet key %s", param)

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	balance, err := s.node.Balance(token.PublicKey(key))
	if err != nil {
		s.fail(w, "Retrieving balance", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(Wallet{
		Key:     token.PublicKey(key).Hex(),
		Balance: balance.String(),
		Nanos:   balance.AsNano(),
	})
}

func (s *Service) fail(w http.ResponseWriter, msg string, err error) {
	s.logger.WithError(err).Error(msg)

	code := http.StatusInternalServerError
	if errors.Is(err, node.ErrNotElder) {
		code = http.StatusServiceUnavailable
	}

	http.Error(w, err.Error(), code)
}
