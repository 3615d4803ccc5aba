package registrar

import (
	"context"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"

	"zns/internal/access"
	"zns/internal/state"
	"zns/pkg/domain"
	dErrors "zns/pkg/domain-errors"
)

var pausedFlag = []byte("paused")

func distributionKey(hash common.Hash) []byte {
	return state.Key(state.PrefixDistribution, hash.Bytes())
}

func generationKey(hash common.Hash) []byte {
	return state.Key(state.PrefixMintlistGeneration, hash.Bytes())
}

func mintlistKey(hash common.Hash, generation uint64, candidate common.Address) []byte {
	return state.Key(state.PrefixMintlist, hash.Bytes(), binary.BigEndian.AppendUint64(nil, generation), candidate.Bytes())
}

func flagKey(name []byte) []byte {
	return state.Key(state.PrefixRegistrarFlags, name)
}

// DistributionConfig returns hash's distribution config with the pricer's
// current encoded config filled in.
func (r *Registrar) DistributionConfig(ctx context.Context, hash common.Hash) (DistributionConfig, bool, error) {
	cfg, found, err := r.loadDistribution(ctx, hash)
	if err != nil || !found {
		return cfg, found, err
	}
	if domain.IsZero(cfg.Pricer) {
		return cfg, true, nil
	}
	pricer, err := r.deps.Pricers.Lookup(cfg.Pricer)
	if err != nil {
		return DistributionConfig{}, false, err
	}
	raw, _, err := pricer.EncodedConfig(ctx, hash)
	if err != nil {
		return DistributionConfig{}, false, err
	}
	cfg.PriceConfig = raw
	return cfg, true, nil
}

func (r *Registrar) loadDistribution(ctx context.Context, hash common.Hash) (DistributionConfig, bool, error) {
	var (
		cfg   DistributionConfig
		found bool
	)
	err := r.runner.View(ctx, func(ctx context.Context) error {
		var err error
		found, err = state.GetJSON(ctx, distributionKey(hash), &cfg)
		return err
	})
	if err != nil {
		return DistributionConfig{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read distribution config")
	}
	return cfg, found, nil
}

func (r *Registrar) storeDistribution(ctx context.Context, hash common.Hash, cfg DistributionConfig) error {
	if err := state.PutJSON(ctx, distributionKey(hash), cfg); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store distribution config")
	}
	return nil
}

// applyDistribution validates cfg, hands its price config to the pricer and
// stores the rest. Runs inside a unit of work.
func (r *Registrar) applyDistribution(ctx context.Context, hash common.Hash, cfg DistributionConfig) error {
	if err := cfg.PaymentType.validate(); err != nil {
		return err
	}
	if err := cfg.AccessType.validate(); err != nil {
		return err
	}
	if err := r.applyPricer(ctx, hash, cfg.Pricer, cfg.PriceConfig); err != nil {
		return err
	}
	if err := r.storeDistribution(ctx, hash, cfg); err != nil {
		return err
	}
	return r.emit(ctx, EventDistributionConfigSet, hash, DistributionConfigSet{
		Pricer:      cfg.Pricer,
		PaymentType: cfg.PaymentType.String(),
		AccessType:  cfg.AccessType.String(),
	})
}

func (r *Registrar) applyPricer(ctx context.Context, hash common.Hash, pricerAddr common.Address, priceConfig []byte) error {
	pricer, err := r.deps.Pricers.Lookup(pricerAddr)
	if err != nil {
		return err
	}
	if len(priceConfig) == 0 {
		return nil
	}
	return pricer.ApplyConfig(ctx, r.self, hash, priceConfig)
}

// SetDistributionConfigForDomain replaces hash's distribution config and,
// when cfg carries one, its price config.
func (r *Registrar) SetDistributionConfigForDomain(ctx context.Context, caller common.Address, hash common.Hash, cfg DistributionConfig) error {
	return r.runner.Run(ctx, "registrar.set_distribution_config", func(ctx context.Context) error {
		if err := r.deps.Registry.AuthorizeDomain(ctx, hash, caller); err != nil {
			return err
		}
		return r.applyDistribution(ctx, hash, cfg)
	})
}

// SetPricerDataForDomain switches hash to pricer, applying priceConfig to it
// when given.
func (r *Registrar) SetPricerDataForDomain(ctx context.Context, caller common.Address, hash common.Hash, pricer common.Address, priceConfig []byte) error {
	return r.runner.Run(ctx, "registrar.set_pricer_data", func(ctx context.Context) error {
		cfg, err := r.authorizedConfig(ctx, hash, caller)
		if err != nil {
			return err
		}
		if err := r.applyPricer(ctx, hash, pricer, priceConfig); err != nil {
			return err
		}
		cfg.Pricer = pricer
		if err := r.storeDistribution(ctx, hash, cfg); err != nil {
			return err
		}
		return r.emit(ctx, EventPricerDataSet, hash, PricerDataSet{Pricer: pricer, PriceConfig: priceConfig})
	})
}

// SetPaymentTypeForDomain changes how hash's children pay.
func (r *Registrar) SetPaymentTypeForDomain(ctx context.Context, caller common.Address, hash common.Hash, paymentType PaymentType) error {
	if err := paymentType.validate(); err != nil {
		return err
	}
	return r.runner.Run(ctx, "registrar.set_payment_type", func(ctx context.Context) error {
		cfg, err := r.authorizedConfig(ctx, hash, caller)
		if err != nil {
			return err
		}
		cfg.PaymentType = paymentType
		if err := r.storeDistribution(ctx, hash, cfg); err != nil {
			return err
		}
		return r.emit(ctx, EventPaymentTypeSet, hash, TypeSet{Value: paymentType.String()})
	})
}

// SetAccessTypeForDomain changes who may register hash's children.
func (r *Registrar) SetAccessTypeForDomain(ctx context.Context, caller common.Address, hash common.Hash, accessType AccessType) error {
	if err := accessType.validate(); err != nil {
		return err
	}
	return r.runner.Run(ctx, "registrar.set_access_type", func(ctx context.Context) error {
		if err := r.deps.Registry.AuthorizeDomain(ctx, hash, caller); err != nil {
			return err
		}
		return r.setAccessType(ctx, hash, accessType)
	})
}

func (r *Registrar) setAccessType(ctx context.Context, hash common.Hash, accessType AccessType) error {
	cfg, _, err := r.loadDistribution(ctx, hash)
	if err != nil {
		return err
	}
	cfg.AccessType = accessType
	if err := r.storeDistribution(ctx, hash, cfg); err != nil {
		return err
	}
	return r.emit(ctx, EventAccessTypeSet, hash, TypeSet{Value: accessType.String()})
}

func (r *Registrar) authorizedConfig(ctx context.Context, hash common.Hash, caller common.Address) (DistributionConfig, error) {
	if err := r.deps.Registry.AuthorizeDomain(ctx, hash, caller); err != nil {
		return DistributionConfig{}, err
	}
	cfg, _, err := r.loadDistribution(ctx, hash)
	return cfg, err
}

// lock sets an existing distribution config to LOCKED.
func (r *Registrar) lock(ctx context.Context, hash common.Hash) error {
	_, found, err := r.loadDistribution(ctx, hash)
	if err != nil || !found {
		return err
	}
	return r.setAccessType(ctx, hash, AccessLocked)
}

// UpdateMintlistForDomain sets or clears candidates on hash's current
// mintlist. candidates and allowed pair up by index.
func (r *Registrar) UpdateMintlistForDomain(ctx context.Context, caller common.Address, hash common.Hash, candidates []common.Address, allowed []bool) error {
	if len(candidates) != len(allowed) {
		return dErrors.Newf(dErrors.CodeValidation, "%d candidates but %d flags", len(candidates), len(allowed))
	}
	return r.runner.Run(ctx, "registrar.update_mintlist", func(ctx context.Context) error {
		if err := r.deps.Registry.AuthorizeDomain(ctx, hash, caller); err != nil {
			return err
		}
		gen, err := r.generation(ctx, hash)
		if err != nil {
			return err
		}
		for i, candidate := range candidates {
			key := mintlistKey(hash, gen, candidate)
			if allowed[i] {
				err = state.Put(ctx, key, []byte{1})
			} else {
				err = state.Delete(ctx, key)
			}
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store mintlist entry")
			}
		}
		return r.emit(ctx, EventMintlistUpdated, hash, MintlistUpdated{
			Generation: gen,
			Candidates: candidates,
			Allowed:    allowed,
		})
	})
}

// ClearMintlistForDomain empties hash's mintlist.
func (r *Registrar) ClearMintlistForDomain(ctx context.Context, caller common.Address, hash common.Hash) error {
	return r.runner.Run(ctx, "registrar.clear_mintlist", func(ctx context.Context) error {
		if err := r.deps.Registry.AuthorizeDomain(ctx, hash, caller); err != nil {
			return err
		}
		_, err := r.bumpGeneration(ctx, hash)
		return err
	})
}

// ClearMintlistAndLock empties hash's mintlist and locks its distribution.
func (r *Registrar) ClearMintlistAndLock(ctx context.Context, caller common.Address, hash common.Hash) error {
	return r.runner.Run(ctx, "registrar.clear_mintlist_and_lock", func(ctx context.Context) error {
		if err := r.deps.Registry.AuthorizeDomain(ctx, hash, caller); err != nil {
			return err
		}
		if _, err := r.bumpGeneration(ctx, hash); err != nil {
			return err
		}
		return r.setAccessType(ctx, hash, AccessLocked)
	})
}

// IsMintlistedForDomain reports whether candidate is on hash's current mintlist.
func (r *Registrar) IsMintlistedForDomain(ctx context.Context, hash common.Hash, candidate common.Address) (bool, error) {
	return r.mintlisted(ctx, hash, candidate)
}

func (r *Registrar) mintlisted(ctx context.Context, hash common.Hash, candidate common.Address) (bool, error) {
	var listed bool
	err := r.runner.View(ctx, func(ctx context.Context) error {
		gen, err := r.generation(ctx, hash)
		if err != nil {
			return err
		}
		listed, err = state.Has(ctx, mintlistKey(hash, gen, candidate))
		return err
	})
	if err != nil {
		return false, wrapError(err, "failed to read mintlist")
	}
	return listed, nil
}

func (r *Registrar) generation(ctx context.Context, hash common.Hash) (uint64, error) {
	raw, err := state.Get(ctx, generationKey(hash))
	if isNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read mintlist generation")
	}
	return binary.BigEndian.Uint64(raw), nil
}

// bumpGeneration starts a new, empty mintlist for hash.
func (r *Registrar) bumpGeneration(ctx context.Context, hash common.Hash) (uint64, error) {
	gen, err := r.generation(ctx, hash)
	if err != nil {
		return 0, err
	}
	gen++
	if err := state.Put(ctx, generationKey(hash), binary.BigEndian.AppendUint64(nil, gen)); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store mintlist generation")
	}
	return gen, r.emit(ctx, EventMintlistCleared, hash, MintlistCleared{Generation: gen})
}

// Paused reports whether public registration is paused.
func (r *Registrar) Paused(ctx context.Context) (bool, error) {
	var paused bool
	err := r.runner.View(ctx, func(ctx context.Context) error {
		var err error
		paused, err = state.Has(ctx, flagKey(pausedFlag))
		return err
	})
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read pause flag")
	}
	return paused, nil
}

// PauseRegistration stops registrations by anyone but admins. Admin only.
func (r *Registrar) PauseRegistration(ctx context.Context, caller common.Address) error {
	return r.setPaused(ctx, caller, true)
}

// UnpauseRegistration resumes public registration. Admin only.
func (r *Registrar) UnpauseRegistration(ctx context.Context, caller common.Address) error {
	return r.setPaused(ctx, caller, false)
}

func (r *Registrar) setPaused(ctx context.Context, caller common.Address, paused bool) error {
	return r.runner.Run(ctx, "registrar.set_paused", func(ctx context.Context) error {
		if err := r.deps.Roles.CheckRole(ctx, access.RoleAdmin, caller); err != nil {
			return err
		}
		current, err := r.Paused(ctx)
		if err != nil {
			return err
		}
		if current == paused {
			return dErrors.Newf(dErrors.CodeValueUnchanged, "registration pause is already %t", paused)
		}
		typ := EventRegistrationUnpaused
		if paused {
			typ = EventRegistrationPaused
			err = state.Put(ctx, flagKey(pausedFlag), []byte{1})
		} else {
			err = state.Delete(ctx, flagKey(pausedFlag))
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store pause flag")
		}
		r.logInfo(ctx, "registration pause changed", "paused", paused, "by", caller.Hex())
		return r.emit(ctx, typ, domain.Root, PauseChanged{By: caller})
	})
}

func (r *Registrar) checkPaused(ctx context.Context, caller common.Address) error {
	paused, err := r.Paused(ctx)
	if err != nil || !paused {
		return err
	}
	admin, err := r.isAdmin(ctx, caller)
	if err != nil {
		return err
	}
	if !admin {
		return dErrors.New(dErrors.CodeRegistrationPaused, "registration is paused")
	}
	return nil
}
