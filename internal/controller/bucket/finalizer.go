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

package bucket_controller

import (
	"context"
	"fmt"

	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	"github.com/deuxfleurs-fr/garage-operator/api/v1alpha1"
	"github.com/deuxfleurs-fr/garage-operator/internal/garageadmin"
	"github.com/deuxfleurs-fr/garage-operator/internal/helpers"
)

func (r *BucketReconciler) handleDeletion(
	ctx context.Context,
	req reconcile.Request,
	bucketResource *v1alpha1.Bucket,
) (reconcile.Result, error) {
	logger := log.FromContext(ctx)

	if !controllerutil.ContainsFinalizer(bucketResource, bucketFinalizer) {
		return ctrl.Result{}, nil
	}

	if err := r.finalizeBucket(ctx, bucketResource); err != nil {
		logger.Error(err, "Failed to delete remote bucket, will retry", "NamespacedName", req.NamespacedName.String())
		return r.ControllerHelper.SetReconciledCondition(
			ctx, r.Status(), r.Recorder, req, bucketResource,
			&bucketResource.Status.Conditions, &bucketResource.Status.State,
			v1alpha1.StateErrored, v1alpha1.ConditionReconciled, v1alpha1.DeletionFailure,
			fmt.Sprintf("Failed to delete bucket %s/%s remotely", bucketResource.Namespace, bucketResource.Name),
			err, 0,
		)
	}

	controllerutil.RemoveFinalizer(bucketResource, bucketFinalizer)
	if err := r.Update(ctx, bucketResource); err != nil {
		logger.Error(err, "Failed to remove finalizer from Bucket resource")
		return ctrl.Result{}, err
	}
	return ctrl.Result{}, nil
}

// finalizeBucket deletes the remote bucket, if one was ever created. A
// Garage that can no longer be fetched (for example, already deleted) is
// treated as having nothing left to clean up remotely; its Ready state is
// not checked.
func (r *BucketReconciler) finalizeBucket(ctx context.Context, bucketResource *v1alpha1.Bucket) error {
	if bucketResource.Status.Id == "" {
		return nil
	}

	garage, err := helpers.GetGarage(ctx, r.Client, bucketResource.Spec.GarageRef, bucketResource.Namespace)
	if err != nil {
		return nil
	}

	adminClient, err := r.AdminClientFor(ctx, r.Client, garage)
	if err != nil {
		return err
	}

	if err := adminClient.DeleteBucket(ctx, bucketResource.Status.Id); err != nil && !garageadmin.IsNotFound(err) {
		return err
	}
	return nil
}
