/*
Copyright 2023.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package garage_controller

import (
	"context"

	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	"github.com/deuxfleurs-fr/garage-operator/api/v1alpha1"
	"github.com/deuxfleurs-fr/garage-operator/internal/garageadmin"
	"github.com/deuxfleurs-fr/garage-operator/internal/quantity"
)

const gibibyte = 1024 * 1024 * 1024

// reconcileLayout implements spec step 8: once the Deployment is ready,
// either leave layout to an external administrator (autoLayout == false),
// confirm an existing layout is in place, or submit one using each node's
// free metadata capacity.
func (r *GarageReconciler) reconcileLayout(
	ctx context.Context,
	req reconcile.Request,
	garage *v1alpha1.Garage,
	adminClient *garageadmin.Client,
) (reconcile.Result, error) {
	logger := log.FromContext(ctx)

	if !garage.Spec.AutoLayout {
		if err := r.refreshCapacity(ctx, garage, adminClient); err != nil {
			logger.Error(err, "Failed to refresh cluster capacity, leaving status.capacity stale")
		}
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, garage,
			&garage.Status.Conditions, &garage.Status.State,
			v1alpha1.StateReady, v1alpha1.ConditionReconciled, v1alpha1.Reconciled,
			"Garage deployment ready, autoLayout disabled", nil, r.ReconcilePeriod,
		)
	}

	status, err := adminClient.GetStatus(ctx)
	if err != nil {
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, garage,
			&garage.Status.Conditions, &garage.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.Unreachable,
			"Failed to fetch cluster status", err, 0,
		)
	}

	if status.LayoutVersion > 0 {
		if err := r.refreshCapacity(ctx, garage, adminClient); err != nil {
			return r.ControllerHelper.SetReconciledCondition(
				ctx, r.Status(), r.Recorder, req, garage,
				&garage.Status.Conditions, &garage.Status.State,
				v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.Unreachable,
				"Failed to refresh cluster capacity", err, 0,
			)
		}
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, garage,
			&garage.Status.Conditions, &garage.Status.State,
			v1alpha1.StateReady, v1alpha1.ConditionReconciled, v1alpha1.Reconciled,
			"Garage cluster already laid out", nil, r.ReconcilePeriod,
		)
	}

	assignments := make([]garageadmin.LayoutAssignment, 0, len(status.Nodes))
	for _, node := range status.Nodes {
		assignment := garageadmin.LayoutAssignment{ID: node.ID, Zone: garage.Namespace, Tags: []string{}}
		if node.MetadataPartition != nil {
			capacity := quantity.RoundToGiB(node.MetadataPartition.Available) * gibibyte
			assignment.Capacity = &capacity
		}
		assignments = append(assignments, assignment)
	}

	if _, err := adminClient.ApplyLayout(ctx, assignments); err != nil {
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, garage,
			&garage.Status.Conditions, &garage.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.CreationFailure,
			"Failed to apply initial cluster layout", err, 0,
		)
	}

	return r.ControllerHelper.SetReconciledCondition(
		ctx, r.Status(), r.Recorder, req, garage,
		&garage.Status.Conditions, &garage.Status.State,
		v1alpha1.StateLayingOut, v1alpha1.ConditionReconciled, v1alpha1.Reconciling,
		"Submitted initial cluster layout", nil, notReadyRequeue,
	)
}

// refreshCapacity pulls the cluster's aggregate capacity and stages it onto
// garage.Status.Capacity, to be persisted by the caller's status update.
func (r *GarageReconciler) refreshCapacity(ctx context.Context, garage *v1alpha1.Garage, adminClient *garageadmin.Client) error {
	capacity, err := adminClient.GetCluster(ctx)
	if err != nil {
		return err
	}
	garage.Status.Capacity = capacity.TotalBytes
	return nil
}
